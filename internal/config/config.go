// Package config loads the docprep YAML configuration.
//
// The file carries two kinds of settings: renderer settings (project
// metadata, Sphinx extensions, theme) that are handed through to the
// downstream renderer unchanged, and build settings used by docprep itself.
package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	derrors "git.home.luguber.info/inful/docprep/internal/foundation/errors"
)

// Config is the root configuration document.
type Config struct {
	Project ProjectConfig `yaml:"project"`
	Sphinx  SphinxConfig  `yaml:"sphinx"`
	Build   BuildConfig   `yaml:"build"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`

	// baseDir is the directory relative paths are resolved against.
	baseDir string
}

// ProjectConfig holds project information shown by the renderer.
type ProjectConfig struct {
	Name      string `yaml:"name"`
	Copyright string `yaml:"copyright,omitempty"`
	Author    string `yaml:"author,omitempty"`
	Release   string `yaml:"release,omitempty"`
}

// SphinxConfig mirrors the general and HTML output options of the renderer.
type SphinxConfig struct {
	Extensions                []string       `yaml:"extensions"`
	TemplatesPath             []string       `yaml:"templates_path,omitempty"`
	ExcludePatterns           []string       `yaml:"exclude_patterns,omitempty"`
	PygmentsStyle             string         `yaml:"pygments_style,omitempty"`
	HTMLCodeblockLinenosStyle string         `yaml:"html_codeblock_linenos_style,omitempty"`
	MystEnableExtensions      []string       `yaml:"myst_enable_extensions,omitempty"`
	HTMLTheme                 string         `yaml:"html_theme"`
	HTMLStaticPath            []string       `yaml:"html_static_path,omitempty"`
	HTMLCSSFiles              []string       `yaml:"html_css_files,omitempty"`
	HTMLJSFiles               []string       `yaml:"html_js_files,omitempty"`
	HTMLThemeOptions          map[string]any `yaml:"html_theme_options,omitempty"`
}

// BuildConfig controls how docprep processes the source tree.
type BuildConfig struct {
	SourceDir       string        `yaml:"source_dir"`
	OutputDir       string        `yaml:"output_dir"`
	Suffixes        []string      `yaml:"suffixes"`
	Workers         int           `yaml:"workers"`
	Incremental     bool          `yaml:"incremental"`
	StatePath       string        `yaml:"state_path"`
	Hooks           []string      `yaml:"hooks,omitempty"`
	RebuildInterval time.Duration `yaml:"rebuild_interval,omitempty"`
}

// LoggingConfig selects the log level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig enables the Prometheus endpoint in watch mode.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen,omitempty"`
}

// Load reads, expands, defaults and validates the configuration at path.
// Variables from a .env file are loaded first so ${VAR} references can use
// them.
func Load(path string) (*Config, error) {
	loadEnvFiles(filepath.Dir(path))

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, derrors.ConfigError("configuration file not found").
				WithCause(err).
				WithContext("path", path).
				Build()
		}
		return nil, derrors.WrapError(err, derrors.CategoryConfig, "read configuration").
			WithContext("path", path).
			Fatal().
			Build()
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	if abs, absErr := filepath.Abs(path); absErr == nil {
		cfg.baseDir = filepath.Dir(abs)
	} else {
		cfg.baseDir = filepath.Dir(path)
	}
	// Path checks depend on the base directory.
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes configuration from YAML. ${VAR} references are expanded
// before decoding and unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, derrors.WrapError(err, derrors.CategoryConfig, "decode configuration").Fatal().Build()
	}

	if err := applyDefaults(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	_ = applyDefaults(cfg)
	return cfg
}

// SetBaseDir overrides the directory relative paths resolve against.
func (c *Config) SetBaseDir(dir string) { c.baseDir = dir }

// BaseDir returns the directory relative paths resolve against.
func (c *Config) BaseDir() string { return c.baseDir }

// SourcePath returns the resolved source directory.
func (c *Config) SourcePath() string { return c.Resolve(c.Build.SourceDir) }

// OutputPath returns the resolved output directory.
func (c *Config) OutputPath() string { return c.Resolve(c.Build.OutputDir) }

// StatePath returns the resolved state database path.
func (c *Config) StatePath() string {
	if c.Build.StatePath == ":memory:" {
		return c.Build.StatePath
	}
	return c.Resolve(c.Build.StatePath)
}

// Resolve joins a relative path onto the base directory.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.baseDir == "" {
		return p
	}
	return filepath.Join(c.baseDir, p)
}

// RendererSettings is the part of the configuration written next to the
// processed sources for the renderer.
type RendererSettings struct {
	Project ProjectConfig `yaml:"project"`
	Sphinx  SphinxConfig  `yaml:"sphinx"`
}

// Renderer returns the renderer settings.
func (c *Config) Renderer() RendererSettings {
	return RendererSettings{Project: c.Project, Sphinx: c.Sphinx}
}
