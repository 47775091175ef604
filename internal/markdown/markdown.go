// Package markdown parses Markdown bodies with goldmark for analysis.
//
// Nothing here renders or rewrites Markdown. The results describe where
// blockquotes and code blocks sit so callers can reason about how a line
// oriented rewrite will treat them.
package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Quote describes a blockquote found in a Markdown body.
type Quote struct {
	Line      int    // 1-based line of the first quoted text line
	FirstLine string // first quoted line with the quote marker removed
	Depth     int    // number of enclosing blockquotes
	InList    bool   // the quote sits inside a list item
}

// LineRange is an inclusive range of 1-based line numbers.
type LineRange struct {
	Start int
	End   int
}

// Contains reports whether line falls inside the range.
func (r LineRange) Contains(line int) bool {
	return line >= r.Start && line <= r.End
}

// Analysis is the structural summary of a Markdown body.
type Analysis struct {
	Quotes []Quote
	Code   []LineRange // content lines of fenced and indented code blocks
}

// InCode reports whether line is part of a code block.
func (a Analysis) InCode(line int) bool {
	for _, r := range a.Code {
		if r.Contains(line) {
			return true
		}
	}
	return false
}

// QuoteAt returns the quote whose first text line is line.
func (a Analysis) QuoteAt(line int) (Quote, bool) {
	for _, q := range a.Quotes {
		if q.Line == line {
			return q, true
		}
	}
	return Quote{}, false
}

// ParseBody parses a Markdown body (frontmatter already removed) into a
// goldmark AST.
func ParseBody(body []byte) gmast.Node {
	return goldmark.New().Parser().Parse(text.NewReader(body))
}

// Analyze parses body and collects its blockquotes and code blocks.
func Analyze(body []byte) Analysis {
	root := ParseBody(body)

	var (
		a          Analysis
		quoteDepth int
		listDepth  int
	)
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		switch node := n.(type) {
		case *gmast.ListItem:
			if entering {
				listDepth++
			} else {
				listDepth--
			}
		case *gmast.Blockquote:
			if !entering {
				quoteDepth--
				return gmast.WalkContinue, nil
			}
			if seg, ok := firstSegment(node); ok {
				a.Quotes = append(a.Quotes, Quote{
					Line:      lineOf(body, seg.Start),
					FirstLine: strings.TrimSpace(string(seg.Value(body))),
					Depth:     quoteDepth,
					InList:    listDepth > 0,
				})
			}
			quoteDepth++
		case *gmast.FencedCodeBlock, *gmast.CodeBlock:
			if entering && n.Lines().Len() > 0 {
				lines := n.Lines()
				a.Code = append(a.Code, LineRange{
					Start: lineOf(body, lines.At(0).Start),
					End:   lineOf(body, lines.At(lines.Len()-1).Start),
				})
			}
		}
		return gmast.WalkContinue, nil
	})
	return a
}

// firstSegment returns the first source line of the quote's first child
// block. Quotes opening with a nested container report nothing themselves.
func firstSegment(quote gmast.Node) (text.Segment, bool) {
	child := quote.FirstChild()
	if child == nil || child.Type() != gmast.TypeBlock || child.Lines().Len() == 0 {
		return text.Segment{}, false
	}
	return child.Lines().At(0), true
}

func lineOf(source []byte, offset int) int {
	if offset > len(source) {
		offset = len(source)
	}
	return bytes.Count(source[:offset], []byte("\n")) + 1
}
