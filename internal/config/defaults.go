package config

import "strings"

// DefaultApplier fills unset values for one configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

func defaultAppliers() []DefaultApplier {
	return []DefaultApplier{
		projectDefaults{},
		sphinxDefaults{},
		buildDefaults{},
		loggingDefaults{},
		metricsDefaults{},
	}
}

func applyDefaults(cfg *Config) error {
	for _, a := range defaultAppliers() {
		if err := a.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}

type projectDefaults struct{}

func (projectDefaults) Domain() string { return "project" }

func (projectDefaults) ApplyDefaults(cfg *Config) error {
	if strings.TrimSpace(cfg.Project.Name) == "" {
		cfg.Project.Name = "Documentation"
	}
	return nil
}

type sphinxDefaults struct{}

func (sphinxDefaults) Domain() string { return "sphinx" }

// ApplyDefaults fills the renderer settings needed to render the rewritten
// admonition fences with MyST.
func (sphinxDefaults) ApplyDefaults(cfg *Config) error {
	s := &cfg.Sphinx
	if s.Extensions == nil {
		s.Extensions = []string{"sphinx_markdown_tables", "myst_parser", "sphinx_copybutton"}
	}
	if s.TemplatesPath == nil {
		s.TemplatesPath = []string{"_templates"}
	}
	if s.PygmentsStyle == "" {
		s.PygmentsStyle = "sphinx"
	}
	if s.HTMLCodeblockLinenosStyle == "" {
		s.HTMLCodeblockLinenosStyle = "table"
	}
	if s.MystEnableExtensions == nil {
		s.MystEnableExtensions = []string{"attrs_block", "colon_fence", "substitution", "amsmath", "dollarmath"}
	}
	if s.HTMLTheme == "" {
		s.HTMLTheme = "sphinx_rtd_theme"
	}
	if s.HTMLStaticPath == nil {
		s.HTMLStaticPath = []string{"_static"}
	}
	return nil
}

type buildDefaults struct{}

func (buildDefaults) Domain() string { return "build" }

func (buildDefaults) ApplyDefaults(cfg *Config) error {
	b := &cfg.Build
	if b.SourceDir == "" {
		b.SourceDir = "docs"
	}
	if b.OutputDir == "" {
		b.OutputDir = "_build/source"
	}
	if len(b.Suffixes) == 0 {
		b.Suffixes = []string{".md"}
	}
	for i, s := range b.Suffixes {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" && !strings.HasPrefix(s, ".") {
			s = "." + s
		}
		b.Suffixes[i] = s
	}
	if b.Workers == 0 {
		b.Workers = 4
	}
	if b.StatePath == "" {
		b.StatePath = ".docprep/state.db"
	}
	return nil
}

type loggingDefaults struct{}

func (loggingDefaults) Domain() string { return "logging" }

func (loggingDefaults) ApplyDefaults(cfg *Config) error {
	if strings.TrimSpace(cfg.Logging.Level) == "" {
		cfg.Logging.Level = string(LogLevelInfo)
	}
	if strings.TrimSpace(cfg.Logging.Format) == "" {
		cfg.Logging.Format = string(LogFormatText)
	}
	return nil
}

type metricsDefaults struct{}

func (metricsDefaults) Domain() string { return "metrics" }

func (metricsDefaults) ApplyDefaults(cfg *Config) error {
	if cfg.Metrics.Listen == "" {
		cfg.Metrics.Listen = ":9464"
	}
	return nil
}
