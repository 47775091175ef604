package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	derrors "git.home.luguber.info/inful/docprep/internal/foundation/errors"
)

// Validate checks every configuration section. The first failing section
// is reported as a validation error carrying the section name.
func (c *Config) Validate() error {
	sections := []struct {
		name     string
		validate func() error
	}{
		{"project", c.Project.validate},
		{"build", c.validateBuild},
		{"logging", c.Logging.validate},
		{"metrics", c.Metrics.validate},
	}
	for _, s := range sections {
		if err := s.validate(); err != nil {
			return derrors.WrapError(err, derrors.CategoryValidation, "invalid configuration").
				WithSeverity(derrors.SeverityFatal).
				WithContext("section", s.name).
				Build()
		}
	}
	return nil
}

func (p ProjectConfig) validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 200)),
	)
}

// ErrOutputContainsSource is returned when the output directory is the
// source directory or one of its ancestors.
var ErrOutputContainsSource = errors.New("output_dir must not be source_dir or a parent of it")

func (c *Config) validateBuild() error {
	if err := c.Build.validate(); err != nil {
		return err
	}
	return c.CheckOutputDir()
}

// CheckOutputDir compares the resolved source and output directories and
// returns ErrOutputContainsSource when the output directory equals the
// source directory or contains it. An output directory nested inside the
// source tree is allowed.
func (c *Config) CheckOutputDir() error {
	if strings.TrimSpace(c.Build.SourceDir) == "" || strings.TrimSpace(c.Build.OutputDir) == "" {
		return nil
	}
	source, err := filepath.Abs(c.SourcePath())
	if err != nil {
		return fmt.Errorf("resolve source_dir: %w", err)
	}
	output, err := filepath.Abs(c.OutputPath())
	if err != nil {
		return fmt.Errorf("resolve output_dir: %w", err)
	}
	rel, err := filepath.Rel(output, source)
	if err != nil {
		// Different volumes.
		return nil
	}
	if rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))) {
		return fmt.Errorf("%w: %s contains %s", ErrOutputContainsSource, output, source)
	}
	return nil
}

func (b BuildConfig) validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.SourceDir, validation.Required),
		validation.Field(&b.OutputDir, validation.Required),
		validation.Field(&b.Suffixes, validation.Required, validation.Each(validation.Required, validation.Length(2, 16))),
		validation.Field(&b.Workers, validation.Required, validation.Min(1), validation.Max(64)),
		validation.Field(&b.StatePath, validation.When(b.Incremental, validation.Required)),
		validation.Field(&b.Hooks, validation.By(uniqueStrings)),
		validation.Field(&b.RebuildInterval, validation.Min(0)),
	)
}

func (l LoggingConfig) validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level, validation.By(func(value any) error {
			_, err := logLevelNormalizer.Parse(value.(string))
			return err
		})),
		validation.Field(&l.Format, validation.By(func(value any) error {
			_, err := logFormatNormalizer.Parse(value.(string))
			return err
		})),
	)
}

func (m MetricsConfig) validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Listen, validation.When(m.Enabled, validation.Required)),
	)
}

func uniqueStrings(value any) error {
	seen := map[string]struct{}{}
	for _, s := range value.([]string) {
		if strings.TrimSpace(s) == "" {
			return errors.New("entries must not be empty")
		}
		if _, dup := seen[s]; dup {
			return errors.New("duplicate entry " + s)
		}
		seen[s] = struct{}{}
	}
	return nil
}
