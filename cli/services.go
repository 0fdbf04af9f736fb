package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"github.com/byteness/leasegate/config"
	"github.com/byteness/leasegate/logging"
	"github.com/byteness/leasegate/notification"
	"github.com/byteness/leasegate/policy"
)

// policyCacheTTL bounds how stale a cached governance policy can be.
const policyCacheTTL = 5 * time.Minute

// buildNotifier assembles the notifier stack from configuration: SNS for
// the alert topic, webhook for lifecycle events, both when both are set.
func buildNotifier(cfg *config.Config, awsCfg aws.Config) notification.Notifier {
	var notifiers []notification.Notifier

	if cfg.AlertTopicARN != "" {
		notifiers = append(notifiers, notification.NewSNSNotifier(awsCfg, cfg.AlertTopicARN))
	}
	if cfg.WebhookURL != "" {
		webhook, err := notification.NewWebhookNotifier(notification.WebhookConfig{URL: cfg.WebhookURL})
		if err != nil {
			log.Printf("leasegate: webhook notifier disabled: %v", err)
		} else {
			notifiers = append(notifiers, webhook)
		}
	}

	switch len(notifiers) {
	case 0:
		return &notification.NoopNotifier{}
	case 1:
		return notifiers[0]
	default:
		return notification.NewMultiNotifier(notifiers...)
	}
}

// buildPolicyLoader assembles the governance policy loader: SSM-backed,
// signature-verified when a signing key is configured, cached either way.
func buildPolicyLoader(cfg *config.Config, awsCfg aws.Config) policy.PolicyLoader {
	var loader policy.PolicyLoader = policy.NewLoader(awsCfg)

	if cfg.PolicySigningKeyARN != "" {
		raw := policy.NewLoaderWithRaw(ssm.NewFromConfig(awsCfg))
		loader = policy.NewVerifyingLoader(raw, raw,
			policy.NewSigner(awsCfg, cfg.PolicySigningKeyARN),
			policy.WithEnforcement(cfg.PolicyEnforceSignatures))
	}

	return policy.NewCachedLoader(loader, policyCacheTTL)
}

// buildLogger assembles the audit logger: CloudWatch Logs when a log
// group is configured, otherwise JSON Lines to the configured file (or
// stderr). Entries are HMAC-signed when a signing secret is configured.
func buildLogger(ctx context.Context, cfg *config.Config, awsCfg aws.Config) (logging.Logger, error) {
	var sigCfg *logging.SignatureConfig
	if cfg.SigningSecretID != "" {
		loader := logging.NewCachedKeyLoader(awsCfg)
		loaded, err := logging.LoadSignatureConfig(ctx, loader, cfg.SigningSecretID)
		if err != nil {
			return nil, fmt.Errorf("loading log signing key: %w", err)
		}
		sigCfg = loaded
	}

	if cfg.LogGroup != "" {
		return logging.NewCloudWatchLogger(awsCfg, &logging.CloudWatchConfig{
			LogGroupName:  cfg.LogGroup,
			LogStreamName: cfg.LogStream,
			SignConfig:    sigCfg,
		}), nil
	}

	out := os.Stderr
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
		if err != nil {
			return nil, fmt.Errorf("opening log file %s: %w", cfg.LogFile, err)
		}
		out = f
	}

	if sigCfg == nil {
		return logging.NewJSONLogger(out), nil
	}
	return logging.NewSignedLogger(out, sigCfg), nil
}
