package lint

import (
	"slices"
	"strings"
)

// Severity indicates the importance level of a linting issue.
type Severity int

const (
	// SeverityInfo marks behaviour worth knowing about that needs no change.
	SeverityInfo Severity = iota
	// SeverityWarning marks content the rewrite will not treat as the author
	// probably intended.
	SeverityWarning
	// SeverityError marks documents the build cannot process correctly.
	SeverityError
)

// String returns the human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Issue is a single problem found in a document.
type Issue struct {
	File     string   `json:"file"`
	Line     int      `json:"line,omitempty"`
	Rule     string   `json:"rule"`
	Severity Severity `json:"-"`
	Message  string   `json:"message"`
	Fix      string   `json:"fix,omitempty"`
}

// Result contains all issues found during linting.
type Result struct {
	Issues     []Issue
	FilesTotal int
}

// Count returns the number of issues with severity s.
func (r *Result) Count(s Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == s {
			n++
		}
	}
	return n
}

// HasErrors reports whether any error-level issue exists.
func (r *Result) HasErrors() bool { return r.Count(SeverityError) > 0 }

// HasWarnings reports whether any warning-level issue exists.
func (r *Result) HasWarnings() bool { return r.Count(SeverityWarning) > 0 }

// Sort orders issues by file, then line, then rule.
func (r *Result) Sort() {
	slices.SortStableFunc(r.Issues, func(a, b Issue) int {
		if c := strings.Compare(a.File, b.File); c != 0 {
			return c
		}
		if a.Line != b.Line {
			return a.Line - b.Line
		}
		return strings.Compare(a.Rule, b.Rule)
	})
}
