package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"

	"github.com/byteness/leasegate/policy"
)

// PolicyCommandInput contains the input for the policy subcommands.
type PolicyCommandInput struct {
	File      string
	Parameter string
	SignKeyID string

	// Loader and Publisher override the built services, for testing.
	Loader    *policy.Loader
	Publisher *policy.Publisher
}

// ConfigurePolicyCommand sets up the policy command tree with kingpin.
func ConfigurePolicyCommand(app *kingpin.Application, l *Leasegate) {
	input := PolicyCommandInput{}

	cmd := app.Command("policy", "Manage the governance policy")

	validate := cmd.Command("validate", "Validate a policy file without pushing it")
	validate.Arg("file", "Path to the policy YAML file").
		Required().
		ExistingFileVar(&input.File)
	validate.Action(func(c *kingpin.ParseContext) error {
		err := PolicyValidateCommand(input)
		app.FatalIfError(err, "policy validate")
		return nil
	})

	push := cmd.Command("push", "Validate a policy file and write it to Parameter Store")
	push.Arg("file", "Path to the policy YAML file").
		Required().
		ExistingFileVar(&input.File)
	push.Flag("parameter", "SSM parameter to write (defaults to the configured one)").
		StringVar(&input.Parameter)
	push.Flag("sign-key", "KMS key ID or alias to sign the policy with").
		StringVar(&input.SignKeyID)
	push.Action(func(c *kingpin.ParseContext) error {
		err := PolicyPushCommand(context.Background(), input, l)
		app.FatalIfError(err, "policy push")
		return nil
	})

	show := cmd.Command("show", "Show the effective governance policy")
	show.Flag("parameter", "SSM parameter to read (defaults to the configured one)").
		StringVar(&input.Parameter)
	show.Action(func(c *kingpin.ParseContext) error {
		err := PolicyShowCommand(context.Background(), input, l)
		app.FatalIfError(err, "policy show")
		return nil
	})
}

// PolicyValidateCommand parses and validates a local policy file.
func PolicyValidateCommand(input PolicyCommandInput) error {
	data, err := os.ReadFile(input.File)
	if err != nil {
		return err
	}
	if err := policy.ValidatePolicy(data); err != nil {
		printError(err)
		return err
	}
	fmt.Printf("%s is valid\n", input.File)
	return nil
}

// PolicyPushCommand validates a policy file and writes it to SSM,
// signing it when a key is given.
func PolicyPushCommand(ctx context.Context, input PolicyCommandInput, l *Leasegate) error {
	data, err := os.ReadFile(input.File)
	if err != nil {
		return err
	}

	parameter, err := resolvePolicyParameter(input.Parameter, l)
	if err != nil {
		return err
	}

	publisher := input.Publisher
	if publisher == nil {
		awsCfg, err := l.AWSConfig(ctx)
		if err != nil {
			printError(err)
			return err
		}
		var signer *policy.Signer
		if input.SignKeyID != "" {
			signer = policy.NewSigner(awsCfg, input.SignKeyID)
		}
		publisher = policy.NewPublisher(awsCfg, signer)
	}

	if err := publisher.Push(ctx, parameter, data); err != nil {
		printError(err)
		return err
	}

	fmt.Printf("Pushed %s to %s\n", input.File, parameter)
	return nil
}

// PolicyShowCommand prints the effective policy, falling back to the
// built-in default when none is stored.
func PolicyShowCommand(ctx context.Context, input PolicyCommandInput, l *Leasegate) error {
	parameter, err := resolvePolicyParameter(input.Parameter, l)
	if err != nil {
		return err
	}

	loader := input.Loader
	if loader == nil {
		awsCfg, err := l.AWSConfig(ctx)
		if err != nil {
			printError(err)
			return err
		}
		loader = policy.NewLoader(awsCfg)
	}

	pol, err := loader.LoadOrDefault(ctx, parameter)
	if err != nil {
		printError(err)
		return err
	}
	return printJSON(pol)
}

func resolvePolicyParameter(flag string, l *Leasegate) (string, error) {
	if flag != "" {
		return flag, nil
	}
	cfg, err := l.Config()
	if err != nil {
		return "", err
	}
	return cfg.PolicyParameter, nil
}
