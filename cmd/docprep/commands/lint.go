package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"

	"git.home.luguber.info/inful/docprep/internal/docs"
	derrors "git.home.luguber.info/inful/docprep/internal/foundation/errors"
	"git.home.luguber.info/inful/docprep/internal/lint"
)

// LintCmd implements the 'lint' command.
type LintCmd struct {
	Path   string `arg:"" optional:"" help:"File or directory to lint. Defaults to build.source_dir"`
	Format string `short:"f" default:"text" help:"Output format (text or json)" enum:"text,json"`
	Quiet  bool   `short:"q" help:"Only report warnings and errors"`
	Color  string `default:"auto" help:"Colorize text output (auto, always, never)" enum:"auto,always,never"`
}

func (l *LintCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g, false)
	if err != nil {
		return err
	}

	path := l.Path
	if path == "" {
		path = cfg.SourcePath()
	}
	info, err := os.Stat(path)
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "path does not exist").
			WithContext("path", path).
			Build()
	}

	var files []docs.DocFile
	if info.IsDir() {
		files, err = docs.Discover(path, cfg.Build.Suffixes, cfg.Sphinx.ExcludePatterns)
		if err != nil {
			return err
		}
	} else {
		files = []docs.DocFile{{
			Path:         path,
			RelativePath: filepath.ToSlash(path),
			Extension:    strings.ToLower(filepath.Ext(path)),
		}}
	}

	result := lint.NewLinter(lint.Config{Quiet: l.Quiet}).CheckFiles(files)
	formatter := lint.NewFormatter(l.Format, l.useColor())
	if err := formatter.Format(g.stdout(), result); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	if result.HasErrors() || result.HasWarnings() {
		return derrors.LintError("lint found problems").
			WithSeverity(derrors.SeverityError).
			WithContext("errors", result.Count(lint.SeverityError)).
			WithContext("warnings", result.Count(lint.SeverityWarning)).
			Build()
	}
	return nil
}

func (l *LintCmd) useColor() bool {
	switch l.Color {
	case "always":
		return true
	case "never":
		return false
	}
	if l.Format == "json" || os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}
