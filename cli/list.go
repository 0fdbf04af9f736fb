package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"

	"github.com/byteness/leasegate/grant"
)

// ListCommandInput contains the input for the list command.
type ListCommandInput struct {
	Status    string
	Requester string
	AccountID string
	Limit     int
	JSON      bool

	Store grant.Store
}

// ConfigureListCommand sets up the list command with kingpin.
func ConfigureListCommand(app *kingpin.Application, l *Leasegate) {
	input := ListCommandInput{}

	cmd := app.Command("list", "List access requests").Alias("ls")

	cmd.Flag("status", "Filter by status").
		EnumVar(&input.Status,
			string(grant.StatusPending),
			string(grant.StatusApproved),
			string(grant.StatusDenied),
			string(grant.StatusExpired),
			string(grant.StatusRevoked))

	cmd.Flag("requester", "Filter by requester email").
		StringVar(&input.Requester)

	cmd.Flag("account", "Filter by account ID").
		StringVar(&input.AccountID)

	cmd.Flag("limit", "Maximum number of results").
		Default("50").
		IntVar(&input.Limit)

	cmd.Flag("json", "Print results as JSON").
		BoolVar(&input.JSON)

	cmd.Action(func(c *kingpin.ParseContext) error {
		err := ListCommand(context.Background(), input, l)
		app.FatalIfError(err, "list")
		return nil
	})
}

// ListCommand executes the list command logic.
func ListCommand(ctx context.Context, input ListCommandInput, l *Leasegate) error {
	store := input.Store
	if store == nil {
		var err error
		store, err = l.Store(ctx)
		if err != nil {
			printError(err)
			return err
		}
	}

	var (
		requests []*grant.AccessRequest
		err      error
	)
	switch {
	case input.Requester != "":
		requests, err = store.ListByRequester(ctx, input.Requester, input.Limit)
	case input.AccountID != "":
		requests, err = store.ListByAccount(ctx, input.AccountID, input.Limit)
	case input.Status != "":
		requests, err = store.ListByStatus(ctx, grant.Status(input.Status), input.Limit)
	default:
		requests, err = store.ListByStatus(ctx, grant.StatusPending, input.Limit)
	}
	if err != nil {
		printError(err)
		return err
	}

	// Secondary filter for flag combinations the indexes don't cover.
	if input.Status != "" && (input.Requester != "" || input.AccountID != "") {
		filtered := requests[:0]
		for _, req := range requests {
			if req.Status == grant.Status(input.Status) {
				filtered = append(filtered, req)
			}
		}
		requests = filtered
	}

	if input.JSON {
		return printJSON(requests)
	}

	fmt.Fprint(os.Stdout, renderRequestTable(requests, isATerminal()))
	return nil
}
