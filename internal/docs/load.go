package docs

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/inful/mdfp"

	derrors "git.home.luguber.info/inful/docprep/internal/docs/errors"
	ferrors "git.home.luguber.info/inful/docprep/internal/foundation/errors"
	"git.home.luguber.info/inful/docprep/internal/frontmatter"
)

// Load reads the document content and derives its title and fingerprint.
func (f *DocFile) Load() error {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return ferrors.WrapError(fmt.Errorf("%w: %w", derrors.ErrFileReadFailed, err), ferrors.CategoryFileSystem, "read document").
			WithContext("path", f.Path).
			Build()
	}
	f.SetContent(string(data))
	return nil
}

// SetContent replaces the content and recomputes title and fingerprint.
func (f *DocFile) SetContent(content string) {
	f.Content = content
	f.Fingerprint = Fingerprint(content)
	f.Title = Title(content, f.DocName)
}

// Fingerprint returns the content fingerprint of a Markdown document. The
// frontmatter and body are hashed separately so an existing fingerprint
// field in the frontmatter does not feed back into the value.
func Fingerprint(content string) string {
	doc, err := frontmatter.Split(content)
	if err != nil {
		return mdfp.CalculateFingerprintFromParts("", content)
	}
	return mdfp.CalculateFingerprintFromParts(stripFingerprintField(doc.Raw), doc.Body)
}

func stripFingerprintField(raw string) string {
	if !strings.Contains(raw, mdfp.FingerprintField) {
		return raw
	}
	var kept []string
	for line := range strings.SplitSeq(raw, "\n") {
		if strings.HasPrefix(line, mdfp.FingerprintField+":") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// Title returns the frontmatter title, the first level one heading or
// fallback, in that order.
func Title(content, fallback string) string {
	doc, err := frontmatter.Split(content)
	if err != nil {
		doc = frontmatter.Document{Body: content}
	} else if fields, ferr := doc.Fields(); ferr == nil {
		if title := frontmatter.String(fields, "title"); title != "" {
			return title
		}
	}

	sc := bufio.NewScanner(strings.NewReader(doc.Body))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	inFence := false
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if strings.HasPrefix(trimmed, "# ") {
			if title := strings.TrimSpace(strings.TrimRight(trimmed[2:], "#")); title != "" {
				return title
			}
		}
	}
	return fallback
}
