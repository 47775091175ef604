package build

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docprep/internal/config"
)

// RendererConfigName is the file written next to the processed sources.
const RendererConfigName = "docprep.yaml"

// copyAssetDirs copies the static and template directories named by the
// renderer settings from the source tree into the output tree. Missing
// directories are ignored.
func copyAssetDirs(cfg *config.Config, sourceDir, outputDir string) (int, error) {
	dirs := append(append([]string{}, cfg.Sphinx.HTMLStaticPath...), cfg.Sphinx.TemplatesPath...)

	copied := 0
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" || filepath.IsAbs(dir) || strings.HasPrefix(filepath.Clean(dir), "..") {
			continue
		}
		src := filepath.Join(sourceDir, dir)
		info, err := os.Stat(src)
		if err != nil || !info.IsDir() {
			continue
		}
		n, err := copyTree(src, filepath.Join(outputDir, dir))
		copied += n
		if err != nil {
			return copied, fmt.Errorf("%w: copy %s: %w", ErrOutput, dir, err)
		}
	}
	return copied, nil
}

func copyTree(src, dst string) (int, error) {
	copied := 0
	err := filepath.WalkDir(src, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if entry.IsDir() {
			return os.MkdirAll(target, 0o750)
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		if err := copyFile(path, target); err != nil {
			return err
		}
		copied++
		return nil
	})
	return copied, err
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// writeRendererConfig writes the renderer settings as YAML so the renderer
// sees the same declarative configuration docprep was run with.
func writeRendererConfig(cfg *config.Config, outputDir string) error {
	var buf bytes.Buffer
	buf.WriteString("# Generated by docprep. Do not edit.\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg.Renderer()); err != nil {
		return fmt.Errorf("%w: encode renderer config: %w", ErrOutput, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("%w: encode renderer config: %w", ErrOutput, err)
	}
	if err := writeIfChanged(filepath.Join(outputDir, RendererConfigName), buf.Bytes()); err != nil {
		return fmt.Errorf("%w: write renderer config: %w", ErrOutput, err)
	}
	return nil
}

// writeIfChanged writes data to path unless the file already holds exactly
// data. Parent directories are created.
func writeIfChanged(path string, data []byte) error {
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, data) {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
