package docs

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
)

// ComputeSetHash returns a deterministic hash over the relative paths and
// fingerprints of files. Input order does not matter.
func ComputeSetHash(files []DocFile) string {
	if len(files) == 0 {
		h := sha256.Sum256([]byte("empty-docs-set"))
		return hex.EncodeToString(h[:])
	}

	entries := make([]string, 0, len(files))
	for _, f := range files {
		entries = append(entries, f.RelativePath+"|"+f.Fingerprint)
	}
	slices.Sort(entries)

	h := sha256.New()
	for _, e := range entries {
		h.Write([]byte(e))
		h.Write([]byte("\n"))
	}
	return hex.EncodeToString(h.Sum(nil))
}
