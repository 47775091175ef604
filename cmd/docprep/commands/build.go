package commands

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"git.home.luguber.info/inful/docprep/internal/build"
	"git.home.luguber.info/inful/docprep/internal/config"
	derrors "git.home.luguber.info/inful/docprep/internal/foundation/errors"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output      string `short:"o" type:"path" help:"Override build.output_dir (relative to the working directory)"`
	Incremental bool   `short:"i" help:"Skip documents unchanged since the last build"`
	Workers     int    `short:"w" help:"Override build.workers"`
	DryRun      bool   `name:"dry-run" help:"Report which outputs would change without writing"`
	Clean       bool   `help:"Remove the output directory and incremental state first"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g, true)
	if err != nil {
		return err
	}
	if err := b.apply(cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return RunBuild(ctx, g, cfg, build.WithDryRun(b.DryRun), build.WithClean(b.Clean))
}

// apply layers the flags over cfg and revalidates.
func (b *BuildCmd) apply(cfg *config.Config) error {
	if b.Output != "" {
		out, err := filepath.Abs(b.Output)
		if err != nil {
			return derrors.WrapError(err, derrors.CategoryConfig, "resolve output directory").
				WithContext("path", b.Output).
				Build()
		}
		cfg.Build.OutputDir = out
	}
	if b.Incremental {
		cfg.Build.Incremental = true
	}
	if b.Workers > 0 {
		cfg.Build.Workers = b.Workers
	}
	return cfg.Validate()
}

// RunBuild runs one build and prints its summary.
func RunBuild(ctx context.Context, g *Global, cfg *config.Config, opts ...build.Option) error {
	opts = append([]build.Option{build.WithLogger(g.logger())}, opts...)
	builder, err := build.NewBuilder(cfg, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := builder.Close(); cerr != nil {
			g.logger().Warn("Failed to close state store", "error", cerr)
		}
	}()

	summary, err := builder.Build(ctx)
	if summary != nil {
		out := g.stdout()
		_, _ = fmt.Fprintln(out, summary.String())
		for _, f := range summary.Failed {
			_, _ = fmt.Fprintf(out, "  failed: %s\n", f.Error())
		}
		for _, path := range summary.Changed {
			_, _ = fmt.Fprintf(out, "  would change: %s\n", path)
		}
	}
	return err
}
