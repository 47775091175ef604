// Package lint reports Markdown that the callout rewrite will not treat the
// way its author most likely intended.
package lint

import (
	"errors"
	"strings"

	"git.home.luguber.info/inful/docprep/internal/callout"
	"git.home.luguber.info/inful/docprep/internal/docs"
	"git.home.luguber.info/inful/docprep/internal/frontmatter"
	"git.home.luguber.info/inful/docprep/internal/markdown"
)

// Config contains configuration for the linter.
type Config struct {
	// Quiet drops info-level issues.
	Quiet bool
}

// Linter applies the rules to documents.
type Linter struct {
	cfg   Config
	rules []Rule
}

// NewLinter creates a linter with the default rule set.
func NewLinter(cfg Config) *Linter {
	return &Linter{cfg: cfg, rules: defaultRules()}
}

// Check lints the content of one document. name is used as the issue file.
func Check(name, content string) []Issue {
	return NewLinter(Config{}).Check(name, content)
}

// Check lints the content of one document.
func (l *Linter) Check(name, content string) []Issue {
	text := callout.Normalize(content)
	doc := &Document{
		File:   name,
		Lines:  strings.Split(strings.TrimSuffix(text, "\n"), "\n"),
		Report: callout.Scan(text),
	}

	var issues []Issue
	fm, err := frontmatter.Split(text)
	switch {
	case errors.Is(err, frontmatter.ErrMissingClosingDelimiter):
		issues = append(issues, Issue{
			File:     name,
			Line:     1,
			Rule:     RuleFrontmatter,
			Severity: SeverityError,
			Message:  "frontmatter is not closed",
			Fix:      "add a closing --- line",
		})
		fm = frontmatter.Document{Body: text, Line: 1}
	case err == nil:
		if _, perr := fm.Fields(); perr != nil {
			issues = append(issues, Issue{
				File:     name,
				Line:     2,
				Rule:     RuleFrontmatter,
				Severity: SeverityError,
				Message:  perr.Error(),
			})
		}
	}

	doc.Body = offset(markdown.Analyze([]byte(fm.Body)), fm.Line-1)

	for _, rule := range l.rules {
		issues = append(issues, rule.Check(doc)...)
	}
	return l.filter(issues)
}

// CheckFiles lints every file, loading content that is not loaded yet.
// Files that cannot be read are reported as errors.
func (l *Linter) CheckFiles(files []docs.DocFile) *Result {
	result := &Result{Issues: []Issue{}, FilesTotal: len(files)}
	for i := range files {
		f := &files[i]
		name := f.RelativePath
		if name == "" {
			name = f.Path
		}
		if f.Content == "" {
			if err := f.Load(); err != nil {
				result.Issues = append(result.Issues, Issue{
					File:     name,
					Rule:     "read",
					Severity: SeverityError,
					Message:  err.Error(),
				})
				continue
			}
		}
		result.Issues = append(result.Issues, l.Check(name, f.Content)...)
	}
	result.Sort()
	return result
}

// CheckFiles lints files with the default configuration.
func CheckFiles(files []docs.DocFile) *Result {
	return NewLinter(Config{}).CheckFiles(files)
}

func (l *Linter) filter(issues []Issue) []Issue {
	if !l.cfg.Quiet {
		return issues
	}
	kept := issues[:0]
	for _, issue := range issues {
		if issue.Severity != SeverityInfo {
			kept = append(kept, issue)
		}
	}
	return kept
}

func offset(a markdown.Analysis, lines int) markdown.Analysis {
	if lines == 0 {
		return a
	}
	for i := range a.Quotes {
		a.Quotes[i].Line += lines
	}
	for i := range a.Code {
		a.Code[i].Start += lines
		a.Code[i].End += lines
	}
	return a
}
