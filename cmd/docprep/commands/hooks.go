package commands

import (
	"fmt"
	"text/tabwriter"

	"git.home.luguber.info/inful/docprep/internal/build"
	"git.home.luguber.info/inful/docprep/internal/hooks"
)

// HooksCmd implements the 'hooks' command.
type HooksCmd struct{}

func (h *HooksCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g, false)
	if err != nil {
		return err
	}
	cfg.Build.Incremental = false

	builder, err := build.NewBuilder(cfg, build.WithLogger(g.logger()))
	if err != nil {
		return err
	}
	defer func() { _ = builder.Close() }()

	tw := tabwriter.NewWriter(g.stdout(), 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "EVENT\tNAME\tPRIORITY")
	for _, event := range []hooks.Event{hooks.EventSourceRead, hooks.EventBuildFinished} {
		for _, reg := range builder.Registry().List(event) {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\n", reg.Event, reg.Name, reg.Priority)
		}
	}
	return tw.Flush()
}
