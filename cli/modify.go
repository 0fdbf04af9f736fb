package cli

import (
	"context"

	"github.com/alecthomas/kingpin/v2"

	"github.com/byteness/leasegate/lifecycle"
)

// ModifyCommandInput contains the input for the modify command.
type ModifyCommandInput struct {
	RequestID string
	Services  []string
	Actions   []string
	Resources []string

	Controller *lifecycle.Controller
	Actor      string
}

// ModifyCommandOutput is the JSON printed on success.
type ModifyCommandOutput struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	RiskScore int    `json:"risk_score"`
	Services  int    `json:"services"`
}

// ConfigureModifyCommand sets up the modify command with kingpin.
func ConfigureModifyCommand(app *kingpin.Application, l *Leasegate) {
	input := ModifyCommandInput{}

	cmd := app.Command("modify", "Replace the services on a pending request")

	cmd.Arg("id", "Request ID").
		Required().
		StringVar(&input.RequestID)

	cmd.Flag("service", "Service to request (repeatable)").
		Required().
		StringsVar(&input.Services)

	cmd.Flag("action", "Action to request (repeatable)").
		StringsVar(&input.Actions)

	cmd.Flag("resource", "Resource identifier within the service (repeatable)").
		StringsVar(&input.Resources)

	cmd.Action(func(c *kingpin.ParseContext) error {
		err := ModifyCommand(context.Background(), input, l)
		app.FatalIfError(err, "modify")
		return nil
	})
}

// ModifyCommand executes the modify command logic.
func ModifyCommand(ctx context.Context, input ModifyCommandInput, l *Leasegate) error {
	selections, err := buildSelections(input.Services, input.Actions, input.Resources)
	if err != nil {
		printError(err)
		return err
	}

	actor := input.Actor
	if actor == "" {
		actor, err = l.Actor(ctx)
		if err != nil {
			printError(err)
			return err
		}
	}

	controller := input.Controller
	if controller == nil {
		controller, err = l.Controller(ctx)
		if err != nil {
			printError(err)
			return err
		}
	}

	req, err := controller.Modify(ctx, input.RequestID, actor, selections)
	if err != nil {
		printError(err)
		return err
	}

	return printJSON(ModifyCommandOutput{
		ID:        req.ID,
		Status:    string(req.Status),
		RiskScore: req.RiskScore,
		Services:  len(req.Spec.Services),
	})
}
