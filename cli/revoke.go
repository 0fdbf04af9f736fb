package cli

import (
	"context"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/byteness/leasegate/lifecycle"
)

// RevokeCommandInput contains the input for the revoke command.
type RevokeCommandInput struct {
	RequestID string
	Reason    string

	Controller *lifecycle.Controller
	Actor      string
}

// RevokeCommandOutput is the JSON printed on success.
type RevokeCommandOutput struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason"`
	RevokedAt time.Time `json:"revoked_at"`
}

// ConfigureRevokeCommand sets up the revoke command with kingpin.
func ConfigureRevokeCommand(app *kingpin.Application, l *Leasegate) {
	input := RevokeCommandInput{}

	cmd := app.Command("revoke", "Revoke an active grant before it expires")

	cmd.Arg("id", "Request ID").
		Required().
		StringVar(&input.RequestID)

	cmd.Flag("reason", "Why the grant is being revoked").
		Required().
		StringVar(&input.Reason)

	cmd.Action(func(c *kingpin.ParseContext) error {
		err := RevokeCommand(context.Background(), input, l)
		app.FatalIfError(err, "revoke")
		return nil
	})
}

// RevokeCommand executes the revoke command logic.
func RevokeCommand(ctx context.Context, input RevokeCommandInput, l *Leasegate) error {
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

	req, err := controller.Revoke(ctx, input.RequestID, actor, input.Reason)
	if err != nil {
		printError(err)
		return err
	}

	return printJSON(RevokeCommandOutput{
		ID:        req.ID,
		Status:    string(req.Status),
		Reason:    req.RevokeReason,
		RevokedAt: req.ExpiresAt,
	})
}
