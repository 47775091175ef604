// Package callout rewrites GitHub-flavoured Markdown alert blockquotes
// ("> [!NOTE]") into MyST admonition fences ("```{note}") before the
// document reaches the MyST parser.
//
// The rewrite is purely line oriented. Lines that do not open a callout are
// copied through unchanged, so malformed input degrades to pass-through
// instead of failing the build.
package callout

import (
	"regexp"
	"strings"
)

const fence = "```"

// space matches one Unicode whitespace character: the ASCII controls,
// U+001C..U+001F, NEL and every space or separator in category Z, such as
// NBSP and the ideographic space U+3000.
const space = `[\t\n\v\f\r\x{1c}-\x{1f}\x{85}\p{Z}]`

var (
	// openPattern matches the first line of a callout after its terminator
	// has been removed. Group 1 is the kind, group 2 the inline content.
	openPattern = regexp.MustCompile(`^[ \t]*>` + space + `*\[!(?i:(note|tip|warning|important|caution))\]` + space + `*(.*)$`)

	// quotePattern matches any blockquote line. Group 1 is the quoted text
	// with at most one separating whitespace character removed.
	quotePattern = regexp.MustCompile(`^[ \t]*>` + space + `?(.*)$`)

	lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")
)

// Block is one callout discovered in a document.
type Block struct {
	Kind   Kind
	Line   int    // 1-based line number of the opening line
	Lines  int    // input lines consumed, opening line included
	Inline string // text following the [!KIND] marker on the opening line
	Body   string // assembled body; empty or newline terminated
}

// Fence renders the block as a MyST directive fence.
func (b Block) Fence() string {
	var sb strings.Builder
	sb.Grow(len(fence)*2 + len(b.Kind) + len(b.Body) + 4)
	sb.WriteString(fence)
	sb.WriteString("{")
	sb.WriteString(string(b.Kind))
	sb.WriteString("}\n")
	sb.WriteString(b.Body)
	sb.WriteString(fence)
	sb.WriteString("\n")
	return sb.String()
}

// Rewrite returns text with every callout blockquote replaced by a fenced
// directive block. CRLF and lone CR line endings are normalised to LF.
// Empty input is returned unchanged.
func Rewrite(text string) string {
	if text == "" {
		return text
	}

	lines := splitLines(Normalize(text))
	var out strings.Builder
	out.Grow(len(text))

	for i := 0; i < len(lines); {
		block, next, ok := blockAt(lines, i)
		if !ok {
			out.WriteString(lines[i])
			i++
			continue
		}
		out.WriteString(block.Fence())
		i = next
	}

	return out.String()
}

// RewriteSource rewrites *source in place. A nil pointer or empty text is a
// no-op.
func RewriteSource(source *string) {
	if source == nil || *source == "" {
		return
	}
	*source = Rewrite(*source)
}

// IsOpening reports whether line, without its terminator, opens a callout.
func IsOpening(line string) bool {
	return openPattern.MatchString(strings.TrimSuffix(line, "\n"))
}

// Normalize converts CRLF and lone CR line terminators to LF.
func Normalize(text string) string {
	if !strings.Contains(text, "\r") {
		return text
	}
	return lineEndings.Replace(text)
}

// splitLines splits text after each LF. Every element keeps its terminator
// except possibly the last one.
func splitLines(text string) []string {
	lines := strings.SplitAfter(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// blockAt reports whether lines[i] opens a callout. When it does, the block
// is returned together with the index of the first line after it.
func blockAt(lines []string, i int) (Block, int, bool) {
	m := openPattern.FindStringSubmatch(strings.TrimSuffix(lines[i], "\n"))
	if m == nil {
		return Block{}, i, false
	}

	block := Block{
		Kind:   Kind(strings.ToLower(m[1])),
		Line:   i + 1,
		Inline: m[2],
	}

	var parts []string
	if block.Inline != "" {
		parts = append(parts, block.Inline)
	}

	j := i + 1
	for ; j < len(lines); j++ {
		line := lines[j]
		mb := quotePattern.FindStringSubmatch(strings.TrimSuffix(line, "\n"))
		if mb == nil {
			break
		}
		content := mb[1]
		if strings.HasSuffix(line, "\n") {
			content += "\n"
		}
		parts = append(parts, content)
	}

	block.Lines = j - i
	block.Body = assembleBody(parts)
	return block, j, true
}

func assembleBody(parts []string) string {
	if len(parts) == 0 {
		return ""
	}
	if len(parts) > 1 && !strings.HasSuffix(parts[0], "\n") {
		parts[0] += "\n"
	}
	body := strings.Join(parts, "")
	if body != "" && !strings.HasSuffix(body, "\n") {
		body += "\n"
	}
	return body
}
