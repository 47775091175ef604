package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docprep/cmd/docprep/commands"
	derrors "git.home.luguber.info/inful/docprep/internal/foundation/errors"
	"git.home.luguber.info/inful/docprep/internal/version"
)

func main() {
	cli := &commands.CLI{}
	global := commands.NewGlobal()

	parser := kong.Parse(cli,
		kong.Name("docprep"),
		kong.Description("Prepare Markdown documentation for a MyST renderer: rewrite GitHub callouts into admonition fences."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	if err := parser.Run(global, cli); err != nil {
		derrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
