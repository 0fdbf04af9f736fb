package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/kingpin/v2"

	"github.com/byteness/leasegate/assist"
	"github.com/byteness/leasegate/lifecycle"
	"github.com/byteness/leasegate/synth"
)

// DraftCommandInput contains the input for the draft command.
type DraftCommandInput struct {
	UseCase       string
	AccountID     string
	Justification string
	DurationHours int
	Submit        bool

	Generator  assist.Generator
	Controller *lifecycle.Controller
	Actor      string
}

// ConfigureDraftCommand sets up the draft command with kingpin.
func ConfigureDraftCommand(app *kingpin.Application, l *Leasegate) {
	input := DraftCommandInput{}

	cmd := app.Command("draft", "Generate candidate permissions from a use-case description")

	cmd.Arg("use-case", "What you are trying to do").
		Required().
		StringVar(&input.UseCase)

	cmd.Flag("submit", "Submit the generated draft as a request").
		BoolVar(&input.Submit)

	cmd.Flag("account", "Target account ID (required with --submit)").
		StringVar(&input.AccountID)

	cmd.Flag("justification", "Justification for the request (defaults to the use case)").
		StringVar(&input.Justification)

	cmd.Flag("duration", "Access duration in hours").
		IntVar(&input.DurationHours)

	cmd.Action(func(c *kingpin.ParseContext) error {
		err := DraftCommand(context.Background(), input, l)
		app.FatalIfError(err, "draft")
		return nil
	})
}

// DraftCommand executes the draft command logic. Generated drafts are
// untrusted: they are sanitized here and re-validated by the lifecycle
// controller on submission.
func DraftCommand(ctx context.Context, input DraftCommandInput, l *Leasegate) error {
	generator := input.Generator
	if generator == nil {
		generator = assist.NewKeywordGenerator()
	}

	draft, err := generator.Generate(ctx, input.UseCase)
	if err != nil {
		printError(err)
		return err
	}
	sanitized := assist.Sanitize(*draft)

	if !input.Submit {
		return printJSON(sanitized)
	}

	if input.AccountID == "" {
		err := fmt.Errorf("--account is required with --submit")
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

	justification := input.Justification
	if justification == "" {
		justification = input.UseCase
	}

	controller := input.Controller
	if controller == nil {
		controller, err = l.Controller(ctx)
		if err != nil {
			printError(err)
			return err
		}
	}

	req, err := controller.Submit(ctx, lifecycle.Draft{
		RequesterEmail: actor,
		AccountID:      input.AccountID,
		Services:       selectionsFromDraft(sanitized),
		Justification:  justification,
		DurationHours:  input.DurationHours,
		AIGenerated:    true,
	})
	if err != nil {
		printError(err)
		return err
	}

	return printJSON(SubmitCommandOutput{
		ID:        req.ID,
		Status:    string(req.Status),
		RiskScore: req.RiskScore,
		ExpiresAt: req.ExpiresAt,
	})
}

// selectionsFromDraft groups a generated draft's namespaced actions by
// service and attaches the suggested resources to each.
func selectionsFromDraft(draft assist.Draft) []synth.ServiceSelection {
	byService := map[string]*synth.ServiceSelection{}
	var order []string

	for _, action := range draft.Actions {
		service, _, found := strings.Cut(action, ":")
		if !found {
			continue
		}
		sel, ok := byService[service]
		if !ok {
			sel = &synth.ServiceSelection{ServiceID: service}
			byService[service] = sel
			order = append(order, service)
		}
		sel.Actions = append(sel.Actions, action)
	}

	for _, resource := range draft.Resources {
		ref := synth.ResourceRef{ID: resource, Name: resource}
		for _, service := range order {
			byService[service].Resources = append(byService[service].Resources, ref)
		}
	}

	selections := make([]synth.ServiceSelection, 0, len(order))
	for _, service := range order {
		selections = append(selections, *byService[service])
	}
	return selections
}
