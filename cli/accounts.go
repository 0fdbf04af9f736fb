package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/alecthomas/kingpin/v2"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/organizations"

	"github.com/byteness/leasegate/inventory"
)

// AccountsCommandInput contains the input for the accounts command.
type AccountsCommandInput struct {
	All  bool
	JSON bool

	Source inventory.AccountSource
}

// ConfigureAccountsCommand sets up the accounts command with kingpin.
func ConfigureAccountsCommand(app *kingpin.Application, l *Leasegate) {
	input := AccountsCommandInput{}

	cmd := app.Command("accounts", "List accounts access can be requested for")

	cmd.Flag("all", "Include suspended accounts").
		BoolVar(&input.All)

	cmd.Flag("json", "Print results as JSON").
		BoolVar(&input.JSON)

	cmd.Action(func(c *kingpin.ParseContext) error {
		err := AccountsCommand(context.Background(), input, l)
		app.FatalIfError(err, "accounts")
		return nil
	})
}

// AccountsCommand executes the accounts command logic.
func AccountsCommand(ctx context.Context, input AccountsCommandInput, l *Leasegate) error {
	source := input.Source
	if source == nil {
		awsCfg, err := l.AWSConfig(ctx)
		if err != nil {
			printError(err)
			return err
		}
		source = inventory.NewOrgAccountSource(organizations.NewFromConfig(awsCfg))
	}

	accounts, err := source.ListAccounts(ctx)
	if err != nil {
		printError(err)
		return err
	}

	if !input.All {
		active := accounts[:0]
		for _, account := range accounts {
			if account.Active() {
				active = append(active, account)
			}
		}
		accounts = active
	}

	if input.JSON {
		return printJSON(accounts)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATUS")
	for _, account := range accounts {
		fmt.Fprintf(w, "%s\t%s\t%s\n", account.ID, account.Name, account.Status)
	}
	return w.Flush()
}

// PermissionSetsCommandInput contains the input for the permission-sets
// command.
type PermissionSetsCommandInput struct {
	JSON bool

	Source inventory.PermissionSetSource
}

// ConfigurePermissionSetsCommand sets up the permission-sets command with
// kingpin.
func ConfigurePermissionSetsCommand(app *kingpin.Application, l *Leasegate) {
	input := PermissionSetsCommandInput{}

	cmd := app.Command("permission-sets", "List pre-approved permission sets")

	cmd.Flag("json", "Print results as JSON").
		BoolVar(&input.JSON)

	cmd.Action(func(c *kingpin.ParseContext) error {
		err := PermissionSetsCommand(context.Background(), input, l)
		app.FatalIfError(err, "permission-sets")
		return nil
	})
}

// PermissionSetsCommand executes the permission-sets command logic.
func PermissionSetsCommand(ctx context.Context, input PermissionSetsCommandInput, l *Leasegate) error {
	source := input.Source
	if source == nil {
		awsCfg, err := l.AWSConfig(ctx)
		if err != nil {
			printError(err)
			return err
		}
		source = inventory.NewIAMPermissionSetSource(iam.NewFromConfig(awsCfg))
	}

	sets, err := source.ListPermissionSets(ctx)
	if err != nil {
		printError(err)
		return err
	}

	if input.JSON {
		return printJSON(sets)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tARN")
	for _, set := range sets {
		fmt.Fprintf(w, "%s\t%s\n", set.Name, set.ARN)
	}
	return w.Flush()
}
