package cli

import (
	"context"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"

	"github.com/byteness/leasegate/provision"
	"github.com/byteness/leasegate/sweep"
)

// SweepCommandInput contains the input for the sweep command.
type SweepCommandInput struct {
	Once     bool
	Interval time.Duration
	Metrics  bool

	// Sweeper overrides the built sweeper, for testing.
	Sweeper *sweep.Sweeper
}

// SweepCommandOutput is the JSON printed after a single pass.
type SweepCommandOutput struct {
	Examined int      `json:"examined"`
	Expired  int      `json:"expired"`
	Skipped  int      `json:"skipped"`
	Failures []string `json:"failures,omitempty"`
}

// ConfigureSweepCommand sets up the sweep command with kingpin.
func ConfigureSweepCommand(app *kingpin.Application, l *Leasegate) {
	input := SweepCommandInput{}

	cmd := app.Command("sweep", "Expire lapsed grants and tear down their policies")

	cmd.Flag("once", "Run a single pass and exit").
		BoolVar(&input.Once)

	cmd.Flag("interval", "How often to sweep when running continuously").
		Default(sweep.DefaultInterval.String()).
		DurationVar(&input.Interval)

	cmd.Flag("metrics", "Publish sweep metrics to CloudWatch").
		BoolVar(&input.Metrics)

	cmd.Action(func(c *kingpin.ParseContext) error {
		err := SweepCommand(context.Background(), input, l)
		app.FatalIfError(err, "sweep")
		return nil
	})
}

// SweepCommand executes the sweep command logic.
func SweepCommand(ctx context.Context, input SweepCommandInput, l *Leasegate) error {
	sweeper := input.Sweeper
	if sweeper == nil {
		var err error
		sweeper, err = buildSweeper(ctx, input, l)
		if err != nil {
			printError(err)
			return err
		}
	}

	if input.Once {
		result, err := sweeper.SweepOnce(ctx)
		if err != nil {
			printError(err)
			return err
		}
		return printJSON(SweepCommandOutput{
			Examined: result.Examined,
			Expired:  result.Expired,
			Skipped:  result.Skipped,
			Failures: result.Failures,
		})
	}

	return sweeper.Run(ctx)
}

// buildSweeper wires a sweeper over the lifecycle controller, rate
// limiting IAM teardowns so a large expiration backlog cannot exhaust
// the API quota.
func buildSweeper(ctx context.Context, input SweepCommandInput, l *Leasegate) (*sweep.Sweeper, error) {
	l.WrapProvisioner = func(inner provision.Provisioner) provision.Provisioner {
		return sweep.NewRateLimitedProvisioner(inner)
	}

	controller, err := l.Controller(ctx)
	if err != nil {
		return nil, err
	}

	opts := []sweep.Option{sweep.WithInterval(input.Interval)}
	if input.Metrics {
		awsCfg, err := l.AWSConfig(ctx)
		if err != nil {
			return nil, err
		}
		opts = append(opts, sweep.WithMetrics(
			sweep.NewCloudWatchPublisher(cloudwatch.NewFromConfig(awsCfg))))
	}

	return sweep.NewSweeper(controller, opts...), nil
}
