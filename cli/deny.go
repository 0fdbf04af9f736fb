package cli

import (
	"context"

	"github.com/alecthomas/kingpin/v2"

	"github.com/byteness/leasegate/lifecycle"
)

// DenyCommandInput contains the input for the deny command.
type DenyCommandInput struct {
	RequestID string
	Reason    string

	Controller *lifecycle.Controller
	Actor      string
}

// DenyCommandOutput is the JSON printed on success.
type DenyCommandOutput struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Approver string `json:"approver"`
	Reason   string `json:"reason"`
}

// ConfigureDenyCommand sets up the deny command with kingpin.
func ConfigureDenyCommand(app *kingpin.Application, l *Leasegate) {
	input := DenyCommandInput{}

	cmd := app.Command("deny", "Deny a pending access request")

	cmd.Arg("id", "Request ID").
		Required().
		StringVar(&input.RequestID)

	cmd.Flag("reason", "Why the request is denied").
		StringVar(&input.Reason)

	cmd.Action(func(c *kingpin.ParseContext) error {
		err := DenyCommand(context.Background(), input, l)
		app.FatalIfError(err, "deny")
		return nil
	})
}

// DenyCommand executes the deny command logic.
func DenyCommand(ctx context.Context, input DenyCommandInput, l *Leasegate) error {
	actor := input.Actor
	if actor == "" {
		var err error
		actor, err = l.Actor(ctx)
		if err != nil {
			printError(err)
			return err
		}
	}

	controller := input.Controller
	if controller == nil {
		var err error
		controller, err = l.Controller(ctx)
		if err != nil {
			printError(err)
			return err
		}
	}

	req, err := controller.Deny(ctx, input.RequestID, actor, input.Reason)
	if err != nil {
		printError(err)
		return err
	}

	return printJSON(DenyCommandOutput{
		ID:       req.ID,
		Status:   string(req.Status),
		Approver: actor,
		Reason:   req.DenialReason,
	})
}
