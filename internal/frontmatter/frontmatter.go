// Package frontmatter separates YAML frontmatter from a Markdown document.
package frontmatter

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// ErrMissingClosingDelimiter indicates the document opened a frontmatter
// block but never closed it.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// Document is a Markdown source split into frontmatter and body.
type Document struct {
	// Raw is the frontmatter without delimiters. Empty when absent.
	Raw string
	// Body is everything after the closing delimiter, or the whole input.
	Body string
	// Had reports whether the input started with a frontmatter block.
	Had bool
	// Line is the 1-based line number the body starts on.
	Line int
}

// Split separates a leading `---` delimited block from the body. Both LF and
// CRLF line endings are accepted. Input without frontmatter is returned as
// the body.
func Split(content string) (Document, error) {
	nl := "\n"
	if strings.HasPrefix(content, delimiter+"\r\n") {
		nl = "\r\n"
	} else if !strings.HasPrefix(content, delimiter+"\n") {
		return Document{Body: content, Line: 1}, nil
	}

	rest := content[len(delimiter)+len(nl):]
	if strings.HasPrefix(rest, delimiter+nl) {
		return Document{Body: rest[len(delimiter)+len(nl):], Had: true, Line: 3}, nil
	}

	closing := nl + delimiter + nl
	idx := strings.Index(rest, closing)
	if idx < 0 {
		// A closing delimiter on the final line without a terminator.
		if strings.HasSuffix(rest, nl+delimiter) {
			idx = len(rest) - len(nl+delimiter)
			raw := rest[:idx+len(nl)]
			return Document{Raw: raw, Had: true, Line: strings.Count(raw, "\n") + 3}, nil
		}
		return Document{}, ErrMissingClosingDelimiter
	}

	raw := rest[:idx+len(nl)]
	return Document{
		Raw:  raw,
		Body: rest[idx+len(closing):],
		Had:  true,
		Line: strings.Count(raw, "\n") + 3,
	}, nil
}

// Fields parses the frontmatter into a map. A document without frontmatter
// yields an empty map.
func (d Document) Fields() (map[string]any, error) {
	return ParseYAML(d.Raw)
}

// ParseYAML parses raw YAML frontmatter (without delimiters) into a map.
func ParseYAML(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// String returns the string value of key, or "" when it is missing or not a
// scalar.
func String(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	case map[string]any, []any:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
