package cli

import (
	"context"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/byteness/leasegate/grant"
	"github.com/byteness/leasegate/lifecycle"
)

// ApproveCommandInput contains the input for the approve command.
type ApproveCommandInput struct {
	RequestID string
	Role      string

	Controller *lifecycle.Controller
	Actor      string
}

// ApproveCommandOutput is the JSON printed on success.
type ApproveCommandOutput struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Approver  string    `json:"approver"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ConfigureApproveCommand sets up the approve command with kingpin.
func ConfigureApproveCommand(app *kingpin.Application, l *Leasegate) {
	input := ApproveCommandInput{}

	cmd := app.Command("approve", "Approve a pending access request")

	cmd.Arg("id", "Request ID").
		Required().
		StringVar(&input.RequestID)

	cmd.Flag("role", "Role you are approving as (self, manager, security_lead, admin)").
		Default(string(grant.RoleSelf)).
		EnumVar(&input.Role,
			string(grant.RoleSelf),
			string(grant.RoleManager),
			string(grant.RoleSecurityLead),
			string(grant.RoleAdmin))

	cmd.Action(func(c *kingpin.ParseContext) error {
		err := ApproveCommand(context.Background(), input, l)
		app.FatalIfError(err, "approve")
		return nil
	})
}

// ApproveCommand executes the approve command logic.
func ApproveCommand(ctx context.Context, input ApproveCommandInput, l *Leasegate) error {
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

	req, err := controller.Approve(ctx, input.RequestID, actor, grant.ApproverRole(input.Role))
	if err != nil {
		printError(err)
		return err
	}

	return printJSON(ApproveCommandOutput{
		ID:        req.ID,
		Status:    string(req.Status),
		Approver:  actor,
		Role:      input.Role,
		ExpiresAt: req.ExpiresAt,
	})
}
