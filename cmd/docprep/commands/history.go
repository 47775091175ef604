package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"git.home.luguber.info/inful/docprep/internal/state"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int `short:"n" default:"10" help:"Number of builds to show (0 for all)"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g, false)
	if err != nil {
		return err
	}

	path := cfg.StatePath()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		_, _ = fmt.Fprintln(g.stdout(), "No builds recorded")
		return nil
	}

	store, err := state.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	builds, err := store.Builds(context.Background(), h.Limit)
	if err != nil {
		return err
	}
	if len(builds) == 0 {
		_, _ = fmt.Fprintln(g.stdout(), "No builds recorded")
		return nil
	}

	tw := tabwriter.NewWriter(g.stdout(), 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "BUILD\tFINISHED\tDURATION\tDOCUMENTS\tSKIPPED\tFAILED\tCALLOUTS\tOUTCOME")
	for _, b := range builds {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			shortID(b.ID),
			humanize.Time(b.FinishedAt),
			b.FinishedAt.Sub(b.StartedAt).Round(time.Millisecond),
			b.Documents, b.Skipped, b.Failed, b.Callouts, b.Outcome)
	}
	return tw.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
