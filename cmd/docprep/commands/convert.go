package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/docprep/internal/build"
	derrors "git.home.luguber.info/inful/docprep/internal/foundation/errors"
)

// ConvertCmd implements the 'convert' command.
type ConvertCmd struct {
	File   string `arg:"" optional:"" help:"Markdown file to convert; stdin when omitted or -"`
	Output string `short:"o" help:"Write the result to this file instead of stdout"`
	Diff   bool   `short:"d" help:"Print a line diff instead of the converted text"`
}

func (c *ConvertCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g, false)
	if err != nil {
		return err
	}
	// Conversions never touch the incremental state.
	cfg.Build.Incremental = false

	builder, err := build.NewBuilder(cfg, build.WithLogger(g.logger()))
	if err != nil {
		return err
	}
	defer func() { _ = builder.Close() }()

	name, input, err := c.read(g)
	if err != nil {
		return err
	}
	docName := strings.TrimSuffix(filepath.ToSlash(name), filepath.Ext(name))
	converted, err := builder.Convert(context.Background(), docName, input)
	if err != nil {
		return err
	}

	result := converted
	if c.Diff {
		result = build.Diff(input, converted)
	}

	if c.Output == "" {
		_, err := io.WriteString(g.stdout(), result)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.Output), 0o750); err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "create output directory").
			WithContext("path", c.Output).
			Build()
	}
	if err := os.WriteFile(c.Output, []byte(result), 0o644); err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "write output").
			WithContext("path", c.Output).
			Build()
	}
	g.logger().Info("Converted document", "path", c.Output)
	return nil
}

func (c *ConvertCmd) read(g *Global) (string, string, error) {
	if c.File == "" || c.File == "-" {
		data, err := io.ReadAll(g.stdin())
		if err != nil {
			return "", "", derrors.WrapError(err, derrors.CategoryFileSystem, "read stdin").Build()
		}
		return "stdin", string(data), nil
	}
	data, err := os.ReadFile(c.File)
	if err != nil {
		return "", "", derrors.WrapError(err, derrors.CategoryFileSystem, fmt.Sprintf("read %s", c.File)).
			Fatal().
			Build()
	}
	return c.File, string(data), nil
}
