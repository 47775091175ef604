// Package docs discovers and loads Markdown source documents.
package docs

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gobwas/glob"

	derrors "git.home.luguber.info/inful/docprep/internal/docs/errors"
	ferrors "git.home.luguber.info/inful/docprep/internal/foundation/errors"
	"git.home.luguber.info/inful/docprep/internal/logfields"
)

// DocFile is one discovered source document.
type DocFile struct {
	Path         string // Absolute or root-joined path to the file
	RelativePath string // Slash separated path relative to the source directory
	DocName      string // RelativePath without extension, as the renderer names it
	Extension    string // Lower-cased file extension including the dot
	Content      string // File content, populated by Load
	Title        string // Title from frontmatter or the first heading, populated by Load
	Fingerprint  string // Content fingerprint, populated by Load
}

// Discoverer finds source documents below a root directory.
type Discoverer struct {
	suffixes []string
	excludes []glob.Glob
}

// NewDiscoverer compiles the exclude patterns. Patterns use glob syntax
// against slash separated relative paths; `*` stays within a directory and
// `**` crosses directories.
func NewDiscoverer(suffixes, excludePatterns []string) (*Discoverer, error) {
	d := &Discoverer{suffixes: make([]string, 0, len(suffixes))}
	for _, s := range suffixes {
		d.suffixes = append(d.suffixes, strings.ToLower(s))
	}
	for _, p := range excludePatterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", derrors.ErrInvalidExcludePattern, p, err)
		}
		d.excludes = append(d.excludes, g)
	}
	return d, nil
}

// Discover walks root and returns the matching documents sorted by relative
// path. Hidden files and directories are skipped.
func Discover(root string, suffixes, excludePatterns []string) ([]DocFile, error) {
	d, err := NewDiscoverer(suffixes, excludePatterns)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "compile exclude patterns").Fatal().Build()
	}
	return d.Discover(root)
}

// Discover walks root and returns the matching documents sorted by relative
// path.
func (d *Discoverer) Discover(root string) ([]DocFile, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, ferrors.WrapError(derrors.ErrSourceDirNotFound, ferrors.CategoryFileSystem, "source directory not found").
			WithContext("path", root).
			Fatal().
			Build()
	}

	var files []DocFile
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("%w: %w", derrors.ErrInvalidRelativePath, err)
		}
		rel = filepath.ToSlash(rel)

		if strings.HasPrefix(entry.Name(), ".") || d.Excluded(rel) {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.IsDir() || !d.Matches(entry.Name()) {
			return nil
		}

		ext := filepath.Ext(entry.Name())
		files = append(files, DocFile{
			Path:         path,
			RelativePath: rel,
			DocName:      strings.TrimSuffix(rel, ext),
			Extension:    strings.ToLower(ext),
		})
		slog.Debug("Discovered document", logfields.Path(rel))
		return nil
	})
	if err != nil {
		return nil, ferrors.WrapError(fmt.Errorf("%w: %w", derrors.ErrDocsDirWalkFailed, err), ferrors.CategoryFileSystem, "walk source directory").
			WithContext("path", root).
			Build()
	}

	slices.SortFunc(files, func(a, b DocFile) int { return strings.Compare(a.RelativePath, b.RelativePath) })
	slog.Info("Documents discovered", logfields.Path(root), logfields.Count(len(files)))
	return files, nil
}

// Matches reports whether name carries one of the source suffixes.
func (d *Discoverer) Matches(name string) bool {
	lower := strings.ToLower(name)
	for _, s := range d.suffixes {
		if strings.HasSuffix(lower, s) && len(lower) > len(s) {
			return true
		}
	}
	return false
}

// Excluded reports whether the slash separated relative path matches an
// exclude pattern.
func (d *Discoverer) Excluded(rel string) bool {
	for _, g := range d.excludes {
		if g.Match(rel) {
			return true
		}
	}
	return false
}
