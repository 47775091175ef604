package config

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strings"
)

// Snapshot computes a stable hash of the fields that change build output.
// Slice fields are order-insensitive.
func (c *Config) Snapshot() string {
	if c == nil {
		return ""
	}
	h := sha256.New()
	w := func(parts ...string) {
		h.Write([]byte(strings.Join(parts, "=")))
		h.Write([]byte{0})
	}
	w("build.source_dir", c.Build.SourceDir)
	w("build.output_dir", c.Build.OutputDir)
	w("build.suffixes", sortedJoin(c.Build.Suffixes))
	w("build.hooks", sortedJoin(c.Build.Hooks))
	w("sphinx.exclude_patterns", sortedJoin(c.Sphinx.ExcludePatterns))
	return hex.EncodeToString(h.Sum(nil))
}

func sortedJoin(values []string) string {
	s := slices.Clone(values)
	slices.Sort(s)
	return strings.Join(s, ",")
}
