package cli

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/byteness/leasegate/audit"
	"github.com/byteness/leasegate/grant"
)

// VerifyCommandInput contains the input for the verify command.
type VerifyCommandInput struct {
	RequestID string
	Limit     int

	Store    grant.Store
	Verifier *audit.TeardownVerifier
}

// ConfigureVerifyCommand sets up the verify command with kingpin.
func ConfigureVerifyCommand(app *kingpin.Application, l *Leasegate) {
	input := VerifyCommandInput{}

	cmd := app.Command("verify", "Check CloudTrail that closed grants were really torn down")

	cmd.Arg("id", "Verify a single request instead of the recent batch").
		StringVar(&input.RequestID)

	cmd.Flag("limit", "How many closed requests to check per status").
		Default("50").
		IntVar(&input.Limit)

	cmd.Action(func(c *kingpin.ParseContext) error {
		err := VerifyCommand(context.Background(), input, l)
		app.FatalIfError(err, "verify")
		return nil
	})
}

// VerifyCommand executes the verify command logic.
func VerifyCommand(ctx context.Context, input VerifyCommandInput, l *Leasegate) error {
	store := input.Store
	if store == nil {
		var err error
		store, err = l.Store(ctx)
		if err != nil {
			printError(err)
			return err
		}
	}

	verifier := input.Verifier
	if verifier == nil {
		awsCfg, err := l.AWSConfig(ctx)
		if err != nil {
			printError(err)
			return err
		}
		verifier = audit.NewTeardownVerifier(awsCfg)
	}

	var requests []*grant.AccessRequest
	if input.RequestID != "" {
		req, err := store.Get(ctx, input.RequestID)
		if err != nil {
			printError(err)
			return err
		}
		requests = []*grant.AccessRequest{req}
	} else {
		for _, status := range []grant.Status{grant.StatusRevoked, grant.StatusExpired} {
			batch, err := store.ListByStatus(ctx, status, input.Limit)
			if err != nil {
				printError(err)
				return err
			}
			requests = append(requests, batch...)
		}
	}

	report, err := verifier.VerifyBatch(ctx, requests)
	if err != nil {
		printError(err)
		return err
	}

	if err := printJSON(report); err != nil {
		return err
	}
	if !report.Clean() {
		return fmt.Errorf("%d teardown(s) could not be verified", len(report.Findings))
	}
	return nil
}
