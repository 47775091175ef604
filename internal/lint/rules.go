package lint

import (
	"fmt"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/docprep/internal/callout"
	"git.home.luguber.info/inful/docprep/internal/markdown"
)

// Rule names.
const (
	RuleUnknownKind   = "unknown-kind"
	RuleUnconverted   = "unconverted-callout"
	RuleCalloutInList = "callout-in-list"
	RuleCalloutInCode = "callout-in-code"
	RuleSplitQuote    = "split-quote"
	RuleNestedCallout = "nested-callout"
	RuleEmptyCallout  = "empty-callout"
	RuleFrontmatter   = "frontmatter"
)

// markerPattern matches a [!WORD] marker at the start of quoted text.
var markerPattern = regexp.MustCompile(`^\[!([A-Za-z][A-Za-z0-9_-]*)\]`)

// Document is the input every rule inspects.
type Document struct {
	File   string
	Lines  []string          // normalised source lines without terminators
	Report callout.Report    // callouts the rewrite will replace
	Body   markdown.Analysis // structure of the body, lines already offset to the full document
}

// Rule checks one aspect of a document.
type Rule interface {
	Name() string
	Check(doc *Document) []Issue
}

func defaultRules() []Rule {
	return []Rule{
		unknownKindRule{},
		unconvertedRule{},
		calloutInListRule{},
		calloutInCodeRule{},
		splitQuoteRule{},
		nestedCalloutRule{},
		emptyCalloutRule{},
	}
}

func kindList() string {
	kinds := callout.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

// unknownKindRule flags blockquotes that look like callouts but use a kind
// the rewrite does not support. They stay plain blockquotes.
type unknownKindRule struct{}

func (unknownKindRule) Name() string { return RuleUnknownKind }

func (r unknownKindRule) Check(doc *Document) []Issue {
	var issues []Issue
	for _, q := range doc.Body.Quotes {
		m := markerPattern.FindStringSubmatch(q.FirstLine)
		if m == nil {
			continue
		}
		if _, ok := callout.ParseKind(m[1]); ok {
			continue
		}
		issues = append(issues, Issue{
			File:     doc.File,
			Line:     q.Line,
			Rule:     r.Name(),
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("callout kind %q is not supported and stays a blockquote", m[1]),
			Fix:      "use one of: " + kindList(),
		})
	}
	return issues
}

// unconvertedRule flags supported markers in quotes the rewrite never sees
// as callouts, such as quotes opening a list item or nested quotes.
type unconvertedRule struct{}

func (unconvertedRule) Name() string { return RuleUnconverted }

func (r unconvertedRule) Check(doc *Document) []Issue {
	starts := blockStarts(doc)

	var issues []Issue
	for _, q := range doc.Body.Quotes {
		if !supportedMarker(q.FirstLine) || starts[q.Line] {
			continue
		}
		where := "this position"
		switch {
		case q.InList:
			where = "a list item"
		case q.Depth > 0:
			where = "a nested blockquote"
		}
		issues = append(issues, Issue{
			File:     doc.File,
			Line:     q.Line,
			Rule:     r.Name(),
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("callout marker inside %s is not rewritten", where),
			Fix:      "move the callout to the start of a line at the top level",
		})
	}
	return issues
}

// calloutInListRule flags callouts indented inside a list item. They are
// rewritten, but the fence lands at column zero and ends the list.
type calloutInListRule struct{}

func (calloutInListRule) Name() string { return RuleCalloutInList }

func (r calloutInListRule) Check(doc *Document) []Issue {
	starts := blockStarts(doc)

	var issues []Issue
	for _, q := range doc.Body.Quotes {
		if !q.InList || !starts[q.Line] || !supportedMarker(q.FirstLine) {
			continue
		}
		issues = append(issues, Issue{
			File:     doc.File,
			Line:     q.Line,
			Rule:     r.Name(),
			Severity: SeverityWarning,
			Message:  "callout inside a list item is rewritten without indentation and ends the list",
			Fix:      "move the callout out of the list",
		})
	}
	return issues
}

// calloutInCodeRule flags callouts inside code blocks. The rewrite is line
// oriented and replaces them anyway.
type calloutInCodeRule struct{}

func (calloutInCodeRule) Name() string { return RuleCalloutInCode }

func (r calloutInCodeRule) Check(doc *Document) []Issue {
	var issues []Issue
	for _, b := range doc.Report.Blocks {
		if !doc.Body.InCode(b.Line) {
			continue
		}
		issues = append(issues, Issue{
			File:     doc.File,
			Line:     b.Line,
			Rule:     r.Name(),
			Severity: SeverityWarning,
			Message:  "callout inside a code block is rewritten as well",
			Fix:      "indent the example differently or escape the marker",
		})
	}
	return issues
}

// splitQuoteRule reports callouts the rewrite will replace although the
// Markdown structure does not start a blockquote there.
type splitQuoteRule struct{}

func (splitQuoteRule) Name() string { return RuleSplitQuote }

func (r splitQuoteRule) Check(doc *Document) []Issue {
	var issues []Issue
	for _, b := range doc.Report.Blocks {
		if doc.Body.InCode(b.Line) {
			continue
		}
		if _, ok := doc.Body.QuoteAt(b.Line); ok {
			continue
		}
		issues = append(issues, Issue{
			File:     doc.File,
			Line:     b.Line,
			Rule:     r.Name(),
			Severity: SeverityInfo,
			Message:  fmt.Sprintf("%s marker in the middle of a blockquote starts a new admonition", b.Kind),
		})
	}
	return issues
}

func blockStarts(doc *Document) map[int]bool {
	starts := make(map[int]bool, len(doc.Report.Blocks))
	for _, b := range doc.Report.Blocks {
		starts[b.Line] = true
	}
	return starts
}

func supportedMarker(text string) bool {
	m := markerPattern.FindStringSubmatch(text)
	if m == nil {
		return false
	}
	_, ok := callout.ParseKind(m[1])
	return ok
}

// nestedCalloutRule reports markers on continuation lines. They become
// literal text of the enclosing admonition.
type nestedCalloutRule struct{}

func (nestedCalloutRule) Name() string { return RuleNestedCallout }

func (r nestedCalloutRule) Check(doc *Document) []Issue {
	var issues []Issue
	for _, b := range doc.Report.Blocks {
		for i := b.Line; i < b.Line-1+b.Lines && i < len(doc.Lines); i++ {
			if !callout.IsOpening(doc.Lines[i]) {
				continue
			}
			issues = append(issues, Issue{
				File:     doc.File,
				Line:     i + 1,
				Rule:     r.Name(),
				Severity: SeverityInfo,
				Message:  fmt.Sprintf("nested marker is kept as text of the enclosing %s", b.Kind),
				Fix:      "separate the callouts with a blank line",
			})
		}
	}
	return issues
}

// emptyCalloutRule reports callouts without any content.
type emptyCalloutRule struct{}

func (emptyCalloutRule) Name() string { return RuleEmptyCallout }

func (r emptyCalloutRule) Check(doc *Document) []Issue {
	var issues []Issue
	for _, b := range doc.Report.Blocks {
		if strings.TrimSpace(b.Body) != "" {
			continue
		}
		issues = append(issues, Issue{
			File:     doc.File,
			Line:     b.Line,
			Rule:     r.Name(),
			Severity: SeverityInfo,
			Message:  fmt.Sprintf("%s has no content", b.Kind),
		})
	}
	return issues
}
