package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "git.home.luguber.info/inful/docprep/internal/foundation/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docprep.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "Documentation", cfg.Project.Name)
	assert.Equal(t, []string{"sphinx_markdown_tables", "myst_parser", "sphinx_copybutton"}, cfg.Sphinx.Extensions)
	assert.Equal(t, []string{"attrs_block", "colon_fence", "substitution", "amsmath", "dollarmath"}, cfg.Sphinx.MystEnableExtensions)
	assert.Equal(t, "sphinx_rtd_theme", cfg.Sphinx.HTMLTheme)
	assert.Equal(t, "sphinx", cfg.Sphinx.PygmentsStyle)
	assert.Equal(t, "table", cfg.Sphinx.HTMLCodeblockLinenosStyle)
	assert.Equal(t, "docs", cfg.Build.SourceDir)
	assert.Equal(t, "_build/source", cfg.Build.OutputDir)
	assert.Equal(t, []string{".md"}, cfg.Build.Suffixes)
	assert.Equal(t, 4, cfg.Build.Workers)
	assert.Equal(t, ".docprep/state.db", cfg.Build.StatePath)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, ":9464", cfg.Metrics.Listen)
	require.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	t.Setenv("DOCPREP_TEST_AUTHOR", "Jane")
	path := writeConfig(t, `
project:
  name: Guide
  author: ${DOCPREP_TEST_AUTHOR}
build:
  source_dir: content
  suffixes: [md, ".MARKDOWN"]
  workers: 2
  rebuild_interval: 5m
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Guide", cfg.Project.Name)
	assert.Equal(t, "Jane", cfg.Project.Author)
	assert.Equal(t, []string{".md", ".markdown"}, cfg.Build.Suffixes)
	assert.Equal(t, 2, cfg.Build.Workers)
	assert.Equal(t, 5*time.Minute, cfg.Build.RebuildInterval)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "content"), cfg.SourcePath())
	assert.Equal(t, filepath.Join(filepath.Dir(path), "_build/source"), cfg.OutputPath())
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DOCPREP_TEST_PROJECT=FromEnvFile\n"), 0o600))
	path := filepath.Join(dir, "docprep.yaml")
	require.NoError(t, os.WriteFile(path, []byte("project:\n  name: ${DOCPREP_TEST_PROJECT}\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("DOCPREP_TEST_PROJECT") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "FromEnvFile", cfg.Project.Name)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.True(t, derrors.HasCategory(err, derrors.CategoryConfig))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := Load(writeConfig(t, "build:\n  nope: true\n"))
		require.Error(t, err)
		assert.True(t, derrors.HasCategory(err, derrors.CategoryConfig))
	})

	t.Run("empty file uses defaults", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, ""))
		require.NoError(t, err)
		assert.Equal(t, 4, cfg.Build.Workers)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		section string
	}{
		{"negative workers", func(c *Config) { c.Build.Workers = -1 }, "build"},
		{"too many workers", func(c *Config) { c.Build.Workers = 1000 }, "build"},
		{"output equals source", func(c *Config) { c.Build.OutputDir = c.Build.SourceDir }, "build"},
		{"output equals source with trailing slash", func(c *Config) { c.Build.OutputDir = "docs/" }, "build"},
		{"output equals dotted source", func(c *Config) { c.Build.OutputDir = "./docs" }, "build"},
		{"output is parent of source", func(c *Config) { c.Build.OutputDir = "." }, "build"},
		{"duplicate hook", func(c *Config) { c.Build.Hooks = []string{"a", "a"} }, "build"},
		{"empty hook", func(c *Config) { c.Build.Hooks = []string{" "} }, "build"},
		{"incremental without state", func(c *Config) { c.Build.Incremental = true; c.Build.StatePath = "" }, "build"},
		{"negative interval", func(c *Config) { c.Build.RebuildInterval = -time.Second }, "build"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "logging"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging"},
		{"metrics without listen", func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Listen = "" }, "metrics"},
		{"blank project", func(c *Config) { c.Project.Name = "" }, "project"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)

			ce, ok := derrors.AsClassified(err)
			require.True(t, ok)
			assert.Equal(t, derrors.CategoryValidation, ce.Category())
			section, _ := ce.Context().GetString("section")
			assert.Equal(t, tt.section, section)
		})
	}
}

func TestCheckOutputDir(t *testing.T) {
	cfg := Default()
	cfg.SetBaseDir(t.TempDir())

	cfg.Build.OutputDir = "docs/_build"
	require.NoError(t, cfg.CheckOutputDir())
	cfg.Build.OutputDir = "docs-out"
	require.NoError(t, cfg.CheckOutputDir())

	cfg.Build.OutputDir = cfg.BaseDir()
	require.ErrorIs(t, cfg.CheckOutputDir(), ErrOutputContainsSource)
	cfg.Build.SourceDir = "site/docs"
	cfg.Build.OutputDir = "site"
	require.ErrorIs(t, cfg.CheckOutputDir(), ErrOutputContainsSource)
	require.ErrorIs(t, cfg.Validate(), ErrOutputContainsSource)
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "docprep.yaml")
	require.NoError(t, Init(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Build.Incremental)
	assert.Equal(t, []string{"style.css"}, cfg.Sphinx.HTMLCSSFiles)
	assert.Equal(t, "#f98800", cfg.Sphinx.HTMLThemeOptions["style_nav_header_background"])

	err = Init(path, false)
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryConfig))

	require.NoError(t, Init(path, true))
}

func TestResolve(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "docs", cfg.SourcePath())

	cfg.SetBaseDir("/srv/site")
	assert.Equal(t, "/srv/site/docs", cfg.SourcePath())
	assert.Equal(t, "/abs/out", cfg.Resolve("/abs/out"))

	cfg.Build.StatePath = ":memory:"
	assert.Equal(t, ":memory:", cfg.StatePath())
}

func TestSnapshot(t *testing.T) {
	a := Default()
	b := Default()
	assert.Equal(t, a.Snapshot(), b.Snapshot())

	a.Build.Suffixes = []string{".md", ".markdown"}
	b.Build.Suffixes = []string{".markdown", ".md"}
	assert.Equal(t, a.Snapshot(), b.Snapshot())

	b.Build.Hooks = []string{"gfm_callouts"}
	assert.NotEqual(t, a.Snapshot(), b.Snapshot())

	b.Logging.Level = "debug"
	c := Default()
	c.Build.Suffixes = []string{".md", ".markdown"}
	c.Build.Hooks = []string{"gfm_callouts"}
	assert.Equal(t, b.Snapshot(), c.Snapshot())

	var nilCfg *Config
	assert.Empty(t, nilCfg.Snapshot())
}

func TestLogging(t *testing.T) {
	assert.Equal(t, LogLevelWarn, NormalizeLogLevel("WARNING"))
	assert.Equal(t, LogLevelInfo, NormalizeLogLevel("bogus"))
	assert.Equal(t, LogFormatJSON, NormalizeLogFormat(" json "))
	assert.Equal(t, LogFormatText, NormalizeLogFormat(""))

	var buf bytes.Buffer
	logger := LoggingConfig{Level: "error", Format: "json"}.NewLogger(&buf, false)
	logger.Info("hidden")
	logger.Error("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	buf.Reset()
	LoggingConfig{Level: "error"}.NewLogger(&buf, true).Debug("verbose")
	assert.Contains(t, buf.String(), "verbose")
}
