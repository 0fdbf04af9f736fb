package main

import (
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/byteness/leasegate/cli"
)

// Version is provided at compile time
var Version = "dev"

func main() {
	app := kingpin.New("leasegate", "Just-in-time, time-bounded cloud access grants")
	app.Version(Version)

	l := cli.ConfigureGlobals(app)

	// Request lifecycle commands
	cli.ConfigureSubmitCommand(app, l)
	cli.ConfigureApproveCommand(app, l)
	cli.ConfigureDenyCommand(app, l)
	cli.ConfigureModifyCommand(app, l)
	cli.ConfigureRevokeCommand(app, l)
	cli.ConfigureDeleteCommand(app, l)
	cli.ConfigureListCommand(app, l)
	cli.ConfigureShowCommand(app, l)

	// Expiration sweep
	cli.ConfigureSweepCommand(app, l)

	// Deployment setup
	cli.ConfigureSetupCommand(app, l)

	// Discovery commands
	cli.ConfigureAccountsCommand(app, l)
	cli.ConfigurePermissionSetsCommand(app, l)

	// Permission drafting
	cli.ConfigureDraftCommand(app, l)

	// Governance policy commands
	cli.ConfigurePolicyCommand(app, l)

	// Audit commands
	cli.ConfigureVerifyCommand(app, l)

	// Identity commands
	cli.ConfigureWhoamiCommand(app, l)

	kingpin.MustParse(app.Parse(os.Args[1:]))
}
