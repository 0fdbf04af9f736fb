package cli

import (
	"context"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/alecthomas/kingpin/v2"

	"github.com/byteness/leasegate/lifecycle"
)

// DeleteCommandInput contains the input for the delete command.
type DeleteCommandInput struct {
	RequestID string
	Force     bool

	Controller *lifecycle.Controller
	Actor      string
}

// ConfigureDeleteCommand sets up the delete command with kingpin.
func ConfigureDeleteCommand(app *kingpin.Application, l *Leasegate) {
	input := DeleteCommandInput{}

	cmd := app.Command("delete", "Permanently delete a closed request record (admin only)")

	cmd.Arg("id", "Request ID").
		Required().
		StringVar(&input.RequestID)

	cmd.Flag("force", "Skip the confirmation prompt").
		BoolVar(&input.Force)

	cmd.Action(func(c *kingpin.ParseContext) error {
		err := DeleteCommand(context.Background(), input, l)
		app.FatalIfError(err, "delete")
		return nil
	})
}

// DeleteCommand executes the delete command logic.
func DeleteCommand(ctx context.Context, input DeleteCommandInput, l *Leasegate) error {
	if !input.Force && isATerminal() {
		confirmed := false
		prompt := &survey.Confirm{
			Message: fmt.Sprintf("Delete request %s? The audit record is removed permanently.", input.RequestID),
		}
		if err := survey.AskOne(prompt, &confirmed); err != nil {
			return err
		}
		if !confirmed {
			return fmt.Errorf("aborted")
		}
	}

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

	if err := controller.Delete(ctx, input.RequestID, actor); err != nil {
		printError(err)
		return err
	}

	fmt.Printf("Deleted request %s\n", input.RequestID)
	return nil
}
