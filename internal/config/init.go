package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	derrors "git.home.luguber.info/inful/docprep/internal/foundation/errors"
)

const exampleHeader = `# docprep configuration
#
# ${VAR} references are expanded from the environment. A .env file next to
# this file is loaded first.
`

// Init writes an example configuration to path. An existing file is only
// replaced when force is set.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return derrors.ConfigError("configuration file already exists").
			WithSeverity(derrors.SeverityError).
			WithContext("path", path).
			WithContext("hint", "use --force to overwrite").
			Build()
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "stat configuration file").
			WithContext("path", path).
			Build()
	}

	cfg := Default()
	cfg.Sphinx.HTMLCSSFiles = []string{"style.css"}
	cfg.Sphinx.HTMLJSFiles = []string{"custom.js"}
	cfg.Sphinx.HTMLThemeOptions = map[string]any{"style_nav_header_background": "#f98800"}
	cfg.Build.Incremental = true

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryInternal, "marshal example configuration").Build()
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return derrors.WrapError(err, derrors.CategoryFileSystem, "create configuration directory").
				WithContext("path", dir).
				Build()
		}
	}
	if err := os.WriteFile(path, append([]byte(exampleHeader), data...), 0o600); err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "write configuration").
			WithContext("path", path).
			Build()
	}
	return nil
}
