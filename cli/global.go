// Package cli wires the leasegate commands: submitting, approving and
// revoking access requests, running the expiration sweep, and managing
// governance policies.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	isatty "github.com/mattn/go-isatty"

	"github.com/byteness/leasegate/config"
	"github.com/byteness/leasegate/grant"
	"github.com/byteness/leasegate/identity"
	"github.com/byteness/leasegate/lifecycle"
	"github.com/byteness/leasegate/notification"
	"github.com/byteness/leasegate/provision"
)

// Leasegate holds the global CLI state: configuration and lazily built
// AWS-backed services.
type Leasegate struct {
	ConfigFile string
	Region     string
	Debug      bool

	// WrapProvisioner, when set, decorates the IAM provisioner before the
	// controller is built. The sweep command uses it for rate limiting.
	WrapProvisioner func(provision.Provisioner) provision.Provisioner

	cfg        *config.Config
	awsCfg     *aws.Config
	store      grant.Store
	controller *lifecycle.Controller
	actor      string
}

// ConfigureGlobals registers global flags and returns the shared state.
func ConfigureGlobals(app *kingpin.Application) *Leasegate {
	l := &Leasegate{}

	app.Flag("config", "Path to the leasegate config file").
		Default(config.DefaultPath()).
		StringVar(&l.ConfigFile)

	app.Flag("region", "AWS region (overrides config)").
		StringVar(&l.Region)

	app.Flag("debug", "Show debugging output").
		BoolVar(&l.Debug)

	return l
}

// Config loads the tool configuration once.
func (l *Leasegate) Config() (*config.Config, error) {
	if l.cfg == nil {
		cfg, err := config.Load(l.ConfigFile)
		if err != nil {
			return nil, err
		}
		if l.Region != "" {
			cfg.Region = l.Region
		}
		l.cfg = cfg
	}
	return l.cfg, nil
}

// AWSConfig loads the SDK configuration for the configured region once.
func (l *Leasegate) AWSConfig(ctx context.Context) (aws.Config, error) {
	if l.awsCfg != nil {
		return *l.awsCfg, nil
	}

	cfg, err := l.Config()
	if err != nil {
		return aws.Config{}, err
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("loading AWS config: %w", err)
	}
	l.awsCfg = &awsCfg
	return awsCfg, nil
}

// Store builds the DynamoDB-backed request store once, wrapped so that
// lifecycle transitions fire the configured notifiers.
func (l *Leasegate) Store(ctx context.Context) (grant.Store, error) {
	if l.store != nil {
		return l.store, nil
	}

	cfg, err := l.Config()
	if err != nil {
		return nil, err
	}
	awsCfg, err := l.AWSConfig(ctx)
	if err != nil {
		return nil, err
	}

	l.store = notification.NewNotifyStore(
		grant.NewDynamoDBStore(awsCfg, cfg.TableName),
		buildNotifier(cfg, awsCfg))
	return l.store, nil
}

// Controller builds the lifecycle controller once, wiring the store,
// provisioner, policy loader, notifier, logger and admin authorizer from
// configuration.
func (l *Leasegate) Controller(ctx context.Context) (*lifecycle.Controller, error) {
	if l.controller != nil {
		return l.controller, nil
	}

	cfg, err := l.Config()
	if err != nil {
		return nil, err
	}
	store, err := l.Store(ctx)
	if err != nil {
		return nil, err
	}
	awsCfg, err := l.AWSConfig(ctx)
	if err != nil {
		return nil, err
	}

	logger, err := buildLogger(ctx, cfg, awsCfg)
	if err != nil {
		return nil, err
	}

	opts := []lifecycle.Option{
		lifecycle.WithPolicyParameter(cfg.PolicyParameter),
		lifecycle.WithNotifier(buildNotifier(cfg, awsCfg)),
		lifecycle.WithLogger(logger),
		lifecycle.WithAdminAuthorizer(identity.NewStaticAuthorizer(cfg.Admins)),
	}

	var provisioner provision.Provisioner = provision.NewIAMProvisionerWithClient(iam.NewFromConfig(awsCfg))
	if l.WrapProvisioner != nil {
		provisioner = l.WrapProvisioner(provisioner)
	}
	policyLoader := buildPolicyLoader(cfg, awsCfg)

	l.controller = lifecycle.NewController(store, provisioner, policyLoader, opts...)
	return l.controller, nil
}

// Actor resolves the acting identity once via STS.
func (l *Leasegate) Actor(ctx context.Context) (string, error) {
	if l.actor != "" {
		return l.actor, nil
	}

	awsCfg, err := l.AWSConfig(ctx)
	if err != nil {
		return "", err
	}

	caller, err := identity.NewSTSResolver(sts.NewFromConfig(awsCfg)).Resolve(ctx)
	if err != nil {
		return "", err
	}
	l.actor = caller.Actor()
	return l.actor, nil
}

func isATerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
