// Package lambda implements the scheduled expiration sweep handler. It is
// deployed behind an EventBridge schedule so grants expire on time even
// when nobody is running the CLI.
package lambda

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"github.com/byteness/leasegate/config"
	"github.com/byteness/leasegate/grant"
	"github.com/byteness/leasegate/lifecycle"
	"github.com/byteness/leasegate/logging"
	"github.com/byteness/leasegate/notification"
	"github.com/byteness/leasegate/policy"
	"github.com/byteness/leasegate/provision"
	"github.com/byteness/leasegate/sweep"
)

// policyCacheTTL bounds how stale a cached governance policy can be.
const policyCacheTTL = 5 * time.Minute

// Handler runs one expiration sweep per invocation.
type Handler struct {
	sweeper *sweep.Sweeper
}

// SweepSummary is the handler's response payload.
type SweepSummary struct {
	Examined int      `json:"examined"`
	Expired  int      `json:"expired"`
	Skipped  int      `json:"skipped"`
	Failures []string `json:"failures,omitempty"`
}

// NewHandler builds the handler from environment configuration
// (LEASEGATE_TABLE, LEASEGATE_REGION and the standard AWS variables).
func NewHandler(ctx context.Context) (*Handler, error) {
	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS configuration: %w", err)
	}

	return newHandler(cfg, awsCfg), nil
}

// newHandler wires the sweeper from resolved configuration. Notifiers,
// policy signature verification and CloudWatch logging follow the same
// config settings the CLI honors.
func newHandler(cfg *config.Config, awsCfg aws.Config) *Handler {
	var notifier notification.Notifier = &notification.NoopNotifier{}
	if cfg.AlertTopicARN != "" {
		notifier = notification.NewSNSNotifier(awsCfg, cfg.AlertTopicARN)
	}

	store := notification.NewNotifyStore(
		grant.NewDynamoDBStore(awsCfg, cfg.TableName), notifier)
	provisioner := sweep.NewRateLimitedProvisioner(
		provision.NewIAMProvisionerWithClient(iam.NewFromConfig(awsCfg)))

	var policyLoader policy.PolicyLoader = policy.NewLoader(awsCfg)
	if cfg.PolicySigningKeyARN != "" {
		raw := policy.NewLoaderWithRaw(ssm.NewFromConfig(awsCfg))
		policyLoader = policy.NewVerifyingLoader(raw, raw,
			policy.NewSigner(awsCfg, cfg.PolicySigningKeyARN),
			policy.WithEnforcement(cfg.PolicyEnforceSignatures))
	}
	policyLoader = policy.NewCachedLoader(policyLoader, policyCacheTTL)

	var logger logging.Logger = logging.NewJSONLogger(os.Stderr)
	if cfg.LogGroup != "" {
		logger = logging.NewCloudWatchLogger(awsCfg, &logging.CloudWatchConfig{
			LogGroupName:  cfg.LogGroup,
			LogStreamName: cfg.LogStream,
		})
	}

	controller := lifecycle.NewController(store, provisioner, policyLoader,
		lifecycle.WithPolicyParameter(cfg.PolicyParameter),
		lifecycle.WithNotifier(notifier),
		lifecycle.WithLogger(logger),
	)

	sweeper := sweep.NewSweeper(controller,
		sweep.WithMetrics(sweep.NewCloudWatchPublisher(cloudwatch.NewFromConfig(awsCfg))))

	return &Handler{sweeper: sweeper}
}

// NewHandlerWithSweeper builds a handler around an existing sweeper, for
// testing.
func NewHandlerWithSweeper(sweeper *sweep.Sweeper) *Handler {
	return &Handler{sweeper: sweeper}
}

// HandleScheduledEvent runs a single sweep pass. Teardown failures are
// reported in the summary rather than failing the invocation; the sweep
// marks those records expired before teardown, so failed teardowns need
// operator attention rather than waiting on the next pass.
func (h *Handler) HandleScheduledEvent(ctx context.Context) (SweepSummary, error) {
	result, err := h.sweeper.SweepOnce(ctx)
	if err != nil {
		return SweepSummary{}, err
	}
	return SweepSummary{
		Examined: result.Examined,
		Expired:  result.Expired,
		Skipped:  result.Skipped,
		Failures: result.Failures,
	}, nil
}
