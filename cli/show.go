package cli

import (
	"context"

	"github.com/alecthomas/kingpin/v2"

	"github.com/byteness/leasegate/grant"
)

// ShowCommandInput contains the input for the show command.
type ShowCommandInput struct {
	RequestID string

	Store grant.Store
}

// ConfigureShowCommand sets up the show command with kingpin.
func ConfigureShowCommand(app *kingpin.Application, l *Leasegate) {
	input := ShowCommandInput{}

	cmd := app.Command("show", "Show a single request in full")

	cmd.Arg("id", "Request ID").
		Required().
		StringVar(&input.RequestID)

	cmd.Action(func(c *kingpin.ParseContext) error {
		err := ShowCommand(context.Background(), input, l)
		app.FatalIfError(err, "show")
		return nil
	})
}

// ShowCommand executes the show command logic.
func ShowCommand(ctx context.Context, input ShowCommandInput, l *Leasegate) error {
	store := input.Store
	if store == nil {
		var err error
		store, err = l.Store(ctx)
		if err != nil {
			printError(err)
			return err
		}
	}

	req, err := store.Get(ctx, input.RequestID)
	if err != nil {
		printError(err)
		return err
	}

	return printJSON(req)
}
