package commands

import (
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docprep/internal/config"
)

// Global carries state shared by every command.
type Global struct {
	Logger *slog.Logger
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewGlobal returns a Global bound to the process streams.
func NewGlobal() *Global {
	return &Global{Logger: slog.Default(), Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// CLI definition and global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"docprep.yaml" env:"DOCPREP_CONFIG"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" help:"Preprocess the source tree into the output directory"`
	Convert ConvertCmd `cmd:"" help:"Rewrite callouts in a single file or stdin"`
	Lint    LintCmd    `cmd:"" help:"Report callouts the rewrite will not convert as intended"`
	Init    InitCmd    `cmd:"" help:"Write an example configuration file"`
	Watch   WatchCmd   `cmd:"" help:"Build, then rebuild whenever sources or configuration change"`
	Hooks   HooksCmd   `cmd:"" help:"List the hooks a build runs"`
	History HistoryCmd `cmd:"" help:"Show recent incremental builds"`
}

// AfterApply runs after flag parsing and installs a default logger. Commands
// that load a configuration replace it with the configured one.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// loadConfig reads the configuration file. When required is false a missing
// file yields the defaults resolved against the working directory. The
// configured logger becomes the default logger.
func (c *CLI) loadConfig(g *Global, required bool) (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		if required || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg = config.Default()
		wd, werr := os.Getwd()
		if werr != nil {
			return nil, werr
		}
		cfg.SetBaseDir(wd)
	}

	logger := cfg.Logging.NewLogger(g.stderr(), c.Verbose)
	slog.SetDefault(logger)
	g.Logger = logger
	return cfg, nil
}

func (g *Global) stdout() io.Writer {
	if g == nil || g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

func (g *Global) stderr() io.Writer {
	if g == nil || g.Stderr == nil {
		return os.Stderr
	}
	return g.Stderr
}

func (g *Global) stdin() io.Reader {
	if g == nil || g.Stdin == nil {
		return os.Stdin
	}
	return g.Stdin
}

func (g *Global) logger() *slog.Logger {
	if g == nil || g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}
