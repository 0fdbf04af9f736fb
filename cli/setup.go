package cli

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/byteness/leasegate/infrastructure"
)

// SetupCommandInput contains the input for the setup command.
type SetupCommandInput struct {
	TableName string
	KMSKeyARN string
	Plan      bool

	Provisioner *infrastructure.TableProvisioner
}

// ConfigureSetupCommand sets up the setup command with kingpin.
func ConfigureSetupCommand(app *kingpin.Application, l *Leasegate) {
	input := SetupCommandInput{}

	cmd := app.Command("setup", "Create the DynamoDB request table")

	cmd.Flag("table", "Table name (defaults to the configured one)").
		StringVar(&input.TableName)

	cmd.Flag("kms-key", "Encrypt the table with this customer KMS key").
		StringVar(&input.KMSKeyARN)

	cmd.Flag("plan", "Print what would be created without creating it").
		BoolVar(&input.Plan)

	cmd.Action(func(c *kingpin.ParseContext) error {
		err := SetupCommand(context.Background(), input, l)
		app.FatalIfError(err, "setup")
		return nil
	})
}

// SetupCommand executes the setup command logic.
func SetupCommand(ctx context.Context, input SetupCommandInput, l *Leasegate) error {
	tableName := input.TableName
	if tableName == "" {
		cfg, err := l.Config()
		if err != nil {
			return err
		}
		tableName = cfg.TableName
	}

	schema := infrastructure.RequestTableSchema(tableName)
	schema.KMSKeyARN = input.KMSKeyARN

	provisioner := input.Provisioner
	if provisioner == nil {
		awsCfg, err := l.AWSConfig(ctx)
		if err != nil {
			printError(err)
			return err
		}
		provisioner = infrastructure.NewTableProvisioner(awsCfg)
	}

	if input.Plan {
		plan, err := provisioner.Plan(schema)
		if err != nil {
			printError(err)
			return err
		}
		return printJSON(plan)
	}

	result, err := provisioner.Create(ctx, schema)
	if err != nil {
		printError(err)
		return err
	}
	if result.Status == infrastructure.StatusFailed {
		printError(result.Error)
		return fmt.Errorf("provisioning %s failed: %w", tableName, result.Error)
	}
	return printJSON(result)
}
