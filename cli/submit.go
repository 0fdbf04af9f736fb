package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/charmbracelet/huh"

	"github.com/byteness/leasegate/lease"
	"github.com/byteness/leasegate/lifecycle"
	"github.com/byteness/leasegate/synth"
)

// SubmitCommandInput contains the input for the submit command.
type SubmitCommandInput struct {
	AccountID     string
	AccountName   string
	Services      []string
	Actions       []string
	Resources     []string
	PermissionSet string
	Justification string
	DurationHours int
	StartAt       string
	EndAt         string
	Interactive   bool

	// Controller is an optional prebuilt controller for testing. If nil,
	// one is built from configuration.
	Controller *lifecycle.Controller

	// Actor overrides identity resolution, for testing.
	Actor string
}

// SubmitCommandOutput is the JSON printed on success.
type SubmitCommandOutput struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	RiskScore int       `json:"risk_score"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ConfigureSubmitCommand sets up the submit command with kingpin.
func ConfigureSubmitCommand(app *kingpin.Application, l *Leasegate) {
	input := SubmitCommandInput{}

	cmd := app.Command("submit", "Submit a request for temporary access")

	cmd.Flag("account", "Target account ID").
		StringVar(&input.AccountID)

	cmd.Flag("account-name", "Target account name (used for anomaly checks)").
		StringVar(&input.AccountName)

	cmd.Flag("service", "Service to request (repeatable)").
		StringsVar(&input.Services)

	cmd.Flag("action", "Action to request, namespaced or bare (repeatable)").
		StringsVar(&input.Actions)

	cmd.Flag("resource", "Resource identifier within the service (repeatable)").
		StringsVar(&input.Resources)

	cmd.Flag("permission-set", "Pre-approved permission set to request instead of services").
		StringVar(&input.PermissionSet)

	cmd.Flag("justification", "Why you need this access").
		StringVar(&input.Justification)

	cmd.Flag("duration", "Access duration in hours").
		IntVar(&input.DurationHours)

	cmd.Flag("start-at", "Custom window start (RFC 3339)").
		StringVar(&input.StartAt)

	cmd.Flag("end-at", "Custom window end (RFC 3339)").
		StringVar(&input.EndAt)

	cmd.Flag("interactive", "Fill in the request interactively").
		Short('i').
		BoolVar(&input.Interactive)

	cmd.Action(func(c *kingpin.ParseContext) error {
		err := SubmitCommand(context.Background(), input, l)
		app.FatalIfError(err, "submit")
		return nil
	})
}

// SubmitCommand executes the submit command logic.
func SubmitCommand(ctx context.Context, input SubmitCommandInput, l *Leasegate) error {
	if input.Interactive || (input.AccountID == "" && isATerminal()) {
		if err := runSubmitForm(&input); err != nil {
			return err
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

	draft := lifecycle.Draft{
		RequesterEmail:   actor,
		AccountID:        input.AccountID,
		AccountName:      input.AccountName,
		PermissionSetRef: input.PermissionSet,
		Justification:    input.Justification,
		DurationHours:    input.DurationHours,
	}

	cfg, err := l.Config()
	if err != nil {
		return err
	}
	draft.Region = cfg.Region
	if draft.DurationHours == 0 && input.StartAt == "" {
		draft.DurationHours = cfg.DefaultDurationHours
	}

	if input.StartAt != "" || input.EndAt != "" {
		window, err := parseWindow(input.StartAt, input.EndAt)
		if err != nil {
			printError(err)
			return err
		}
		draft.Window = window
		draft.DurationHours = 0
	}

	if input.PermissionSet == "" {
		selections, err := buildSelections(input.Services, input.Actions, input.Resources)
		if err != nil {
			printError(err)
			return err
		}
		draft.Services = selections
	}

	controller := input.Controller
	if controller == nil {
		controller, err = l.Controller(ctx)
		if err != nil {
			printError(err)
			return err
		}
	}

	req, err := controller.Submit(ctx, draft)
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

// buildSelections groups flat --service/--action/--resource flags into
// per-service selections. Namespaced actions ("s3:GetObject") go to their
// service; bare actions apply to every selected service.
func buildSelections(services, actions, resources []string) ([]synth.ServiceSelection, error) {
	if len(services) == 0 {
		return nil, fmt.Errorf("at least one --service is required (or use --permission-set)")
	}

	selections := make([]synth.ServiceSelection, 0, len(services))
	for _, service := range services {
		sel := synth.ServiceSelection{ServiceID: service}

		for _, action := range actions {
			if prefix, _, found := strings.Cut(action, ":"); found {
				if prefix != service {
					continue
				}
			}
			sel.Actions = append(sel.Actions, action)
		}
		for _, resource := range resources {
			sel.Resources = append(sel.Resources, synth.ResourceRef{ID: resource, Name: resource})
		}

		if len(sel.Actions) == 0 {
			return nil, fmt.Errorf("no actions for service %q", service)
		}
		selections = append(selections, sel)
	}
	return selections, nil
}

// parseWindow builds a custom lease window from RFC 3339 flags.
func parseWindow(startAt, endAt string) (*lease.CustomWindow, error) {
	if startAt == "" || endAt == "" {
		return nil, fmt.Errorf("--start-at and --end-at must be given together")
	}
	start, err := time.Parse(time.RFC3339, startAt)
	if err != nil {
		return nil, fmt.Errorf("invalid --start-at: %w", err)
	}
	end, err := time.Parse(time.RFC3339, endAt)
	if err != nil {
		return nil, fmt.Errorf("invalid --end-at: %w", err)
	}
	return &lease.CustomWindow{Start: start, End: end}, nil
}

// runSubmitForm collects missing request fields interactively.
func runSubmitForm(input *SubmitCommandInput) error {
	var serviceCSV, actionCSV, resourceCSV, duration string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Account ID").
				Value(&input.AccountID).
				Validate(validateAccountID),
			huh.NewInput().
				Title("Services (comma separated, e.g. s3,dynamodb)").
				Value(&serviceCSV),
			huh.NewInput().
				Title("Actions (comma separated, e.g. s3:GetObject)").
				Value(&actionCSV),
			huh.NewInput().
				Title("Resources (comma separated)").
				Value(&resourceCSV),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Duration in hours").
				Value(&duration),
			huh.NewText().
				Title("Justification").
				Value(&input.Justification),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	input.Services = splitCSV(serviceCSV)
	input.Actions = splitCSV(actionCSV)
	input.Resources = splitCSV(resourceCSV)
	if duration != "" {
		hours, err := strconv.Atoi(strings.TrimSpace(duration))
		if err != nil {
			return fmt.Errorf("invalid duration %q", duration)
		}
		input.DurationHours = hours
	}
	return nil
}

func validateAccountID(s string) error {
	s = strings.TrimSpace(s)
	if len(s) != 12 {
		return fmt.Errorf("account ID must be 12 digits")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return fmt.Errorf("account ID must be 12 digits")
		}
	}
	return nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
