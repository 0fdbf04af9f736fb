package cli

import (
	"context"

	"github.com/alecthomas/kingpin/v2"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/byteness/leasegate/identity"
)

// WhoamiCommandInput contains the input for the whoami command.
type WhoamiCommandInput struct {
	// Resolver overrides the STS-backed resolver, for testing.
	Resolver interface {
		Resolve(ctx context.Context) (*identity.Caller, error)
	}
}

// WhoamiCommandOutput is the JSON printed on success.
type WhoamiCommandOutput struct {
	Actor     string `json:"actor"`
	ARN       string `json:"arn"`
	AccountID string `json:"account_id"`
	Type      string `json:"type"`
	Admin     bool   `json:"admin"`
}

// ConfigureWhoamiCommand sets up the whoami command with kingpin.
func ConfigureWhoamiCommand(app *kingpin.Application, l *Leasegate) {
	input := WhoamiCommandInput{}

	cmd := app.Command("whoami", "Show the identity requests will be attributed to")

	cmd.Action(func(c *kingpin.ParseContext) error {
		err := WhoamiCommand(context.Background(), input, l)
		app.FatalIfError(err, "whoami")
		return nil
	})
}

// WhoamiCommand executes the whoami command logic.
func WhoamiCommand(ctx context.Context, input WhoamiCommandInput, l *Leasegate) error {
	resolver := input.Resolver
	if resolver == nil {
		awsCfg, err := l.AWSConfig(ctx)
		if err != nil {
			printError(err)
			return err
		}
		resolver = identity.NewSTSResolver(sts.NewFromConfig(awsCfg))
	}

	caller, err := resolver.Resolve(ctx)
	if err != nil {
		printError(err)
		return err
	}

	cfg, err := l.Config()
	if err != nil {
		return err
	}
	authorizer := identity.NewStaticAuthorizer(cfg.Admins)
	admin, _ := authorizer.IsAdmin(ctx, caller.Actor())

	return printJSON(WhoamiCommandOutput{
		Actor:     caller.Actor(),
		ARN:       caller.ARN,
		AccountID: caller.AccountID,
		Type:      string(caller.Type),
		Admin:     admin,
	})
}
