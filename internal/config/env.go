package config

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// envFiles are tried in order; only the first existing one is loaded.
var envFiles = []string{".env", ".env.local"}

// loadEnvFiles loads the first env file found in dir. Variables already set
// in the process environment win.
func loadEnvFiles(dir string) {
	for _, name := range envFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			slog.Warn("Failed to load env file", "file", path, "error", err)
			continue
		}
		slog.Debug("Loaded environment variables", "file", path)
		return
	}
}
