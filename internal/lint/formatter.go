package lint

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Formatter writes linting results.
type Formatter interface {
	Format(w io.Writer, result *Result) error
}

// NewFormatter returns the formatter for format ("text" or "json").
func NewFormatter(format string, useColor bool) Formatter {
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		return JSONFormatter{}
	}
	return NewTextFormatter(useColor)
}

// TextFormatter writes one line per issue followed by a summary.
type TextFormatter struct {
	palette map[Severity]*color.Color
}

// NewTextFormatter creates a text formatter. Colours are only emitted when
// useColor is set.
func NewTextFormatter(useColor bool) *TextFormatter {
	palette := map[Severity]*color.Color{
		SeverityInfo:    color.New(color.FgCyan),
		SeverityWarning: color.New(color.FgYellow),
		SeverityError:   color.New(color.FgRed, color.Bold),
	}
	for _, c := range palette {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return &TextFormatter{palette: palette}
}

// Format writes issues as file:line: SEVERITY [rule] message.
func (f *TextFormatter) Format(w io.Writer, result *Result) error {
	for _, issue := range result.Issues {
		loc := issue.File
		if issue.Line > 0 {
			loc = fmt.Sprintf("%s:%d", issue.File, issue.Line)
		}
		severity := f.palette[issue.Severity].Sprint(issue.Severity.String())
		if _, err := fmt.Fprintf(w, "%s: %s [%s] %s\n", loc, severity, issue.Rule, issue.Message); err != nil {
			return err
		}
		if issue.Fix != "" {
			if _, err := fmt.Fprintf(w, "  fix: %s\n", issue.Fix); err != nil {
				return err
			}
		}
	}

	errs := result.Count(SeverityError)
	warns := result.Count(SeverityWarning)
	infos := result.Count(SeverityInfo)
	_, err := fmt.Fprintf(w, "%d file%s checked: %d error%s, %d warning%s, %d info\n",
		result.FilesTotal, pluralize(result.FilesTotal),
		errs, pluralize(errs),
		warns, pluralize(warns),
		infos)
	return err
}

// JSONFormatter writes results as a JSON document.
type JSONFormatter struct{}

// JSONOutput is the JSON output structure.
type JSONOutput struct {
	FilesTotal   int         `json:"files_total"`
	ErrorCount   int         `json:"error_count"`
	WarningCount int         `json:"warning_count"`
	InfoCount    int         `json:"info_count"`
	Issues       []JSONIssue `json:"issues"`
}

// JSONIssue is a single issue in JSON form.
type JSONIssue struct {
	Issue
	Severity string `json:"severity"`
}

// Format writes the result as indented JSON.
func (JSONFormatter) Format(w io.Writer, result *Result) error {
	out := JSONOutput{
		FilesTotal:   result.FilesTotal,
		ErrorCount:   result.Count(SeverityError),
		WarningCount: result.Count(SeverityWarning),
		InfoCount:    result.Count(SeverityInfo),
		Issues:       make([]JSONIssue, 0, len(result.Issues)),
	}
	for _, issue := range result.Issues {
		out.Issues = append(out.Issues, JSONIssue{Issue: issue, Severity: strings.ToLower(issue.Severity.String())})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// FormatText writes result as plain text without colours.
func FormatText(w io.Writer, result *Result) error {
	return NewTextFormatter(false).Format(w, result)
}

// FormatJSON writes result as JSON.
func FormatJSON(w io.Writer, result *Result) error {
	return JSONFormatter{}.Format(w, result)
}

func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
