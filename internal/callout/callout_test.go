package callout

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewrite(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "empty input is returned unchanged",
			input: "",
			want:  "",
		},
		{
			name:  "minimal callout",
			input: "> [!NOTE]\n> hello\n",
			want:  "```{note}\nhello\n```\n",
		},
		{
			name:  "inline only",
			input: "> [!TIP] quick tip\n",
			want:  "```{tip}\nquick tip\n```\n",
		},
		{
			name:  "bare marker produces empty body",
			input: "> [!WARNING]\n",
			want:  "```{warning}\n```\n",
		},
		{
			name:  "mixed case kind is lowercased",
			input: "> [!Important]\n> read this\n",
			want:  "```{important}\nread this\n```\n",
		},
		{
			name:  "upper case kind",
			input: "> [!IMPORTANT]\n> read this\n",
			want:  "```{important}\nread this\n```\n",
		},
		{
			name:  "lower case caution",
			input: "> [!caution]\n> hot\n",
			want:  "```{caution}\nhot\n```\n",
		},
		{
			name:  "inline content followed by continuation lines",
			input: "> [!NOTE] heading text\n> line one\n> line two\n",
			want:  "```{note}\nheading text\nline one\nline two\n```\n",
		},
		{
			name:  "final line without terminator gets one",
			input: "> [!NOTE]\n> hello",
			want:  "```{note}\nhello\n```\n",
		},
		{
			name:  "inline only without terminator",
			input: "> [!TIP] x",
			want:  "```{tip}\nx\n```\n",
		},
		{
			name:  "bare marker without terminator",
			input: "> [!NOTE]",
			want:  "```{note}\n```\n",
		},
		{
			name:  "empty quoted line is an empty continuation",
			input: "> [!NOTE]\n> first\n>\n> second\n",
			want:  "```{note}\nfirst\n\nsecond\n```\n",
		},
		{
			name:  "trailing empty quote without terminator",
			input: "> [!NOTE]\n>",
			want:  "```{note}\n```\n",
		},
		{
			name:  "indentation and spacing around marker",
			input: "  >   [!note]   hi  \n",
			want:  "```{note}\nhi  \n```\n",
		},
		{
			name:  "no space after quote marker",
			input: ">[!TIP]\n>tight\n",
			want:  "```{tip}\ntight\n```\n",
		},
		{
			name:  "only one separating space is removed from continuation",
			input: "> [!NOTE]\n\t>   indented code\n",
			want:  "```{note}\n  indented code\n```\n",
		},
		{
			name:  "no-break space after quote marker",
			input: ">\u00a0[!NOTE]\n",
			want:  "```{note}\n```\n",
		},
		{
			name:  "ideographic space before inline content",
			input: "> [!TIP]\u3000提示\n",
			want:  "```{tip}\n提示\n```\n",
		},
		{
			name:  "ideographic space separates continuation text",
			input: "> [!NOTE]\n>\u3000正文\n",
			want:  "```{note}\n正文\n```\n",
		},
		{
			name:  "only one unicode space is removed from continuation",
			input: "> [!NOTE]\n>\u3000\u3000缩进\n",
			want:  "```{note}\n\u3000缩进\n```\n",
		},
		{
			name:  "en and em spaces around marker",
			input: ">\u2002[!WARNING]\u2003hot\n",
			want:  "```{warning}\nhot\n```\n",
		},
		{
			name:  "no-break space before quote marker is not indentation",
			input: "\u00a0> [!NOTE]\n",
			want:  "\u00a0> [!NOTE]\n",
		},
		{
			name:  "callout surrounded by paragraphs",
			input: "Intro paragraph.\n\n> [!NOTE]\n> body\n\nOutro paragraph.\n",
			want:  "Intro paragraph.\n\n```{note}\nbody\n```\n\nOutro paragraph.\n",
		},
		{
			name:  "callout ends at first unquoted line",
			input: "> [!NOTE]\n> body\nplain\n> quoted again\n",
			want:  "```{note}\nbody\n```\nplain\n> quoted again\n",
		},
		{
			name:  "two sequential callouts",
			input: "> [!NOTE]\n> one\n\n> [!WARNING]\n> two\n",
			want:  "```{note}\none\n```\n\n```{warning}\ntwo\n```\n",
		},
		{
			name:  "adjacent marker is absorbed as content",
			input: "> [!NOTE]\n> a\n> [!TIP]\n> b\n",
			want:  "```{note}\na\n[!TIP]\nb\n```\n",
		},
		{
			name:  "ordinary blockquote before a callout is untouched",
			input: "> just a quote\n> [!NOTE]\n",
			want:  "> just a quote\n```{note}\n```\n",
		},
		{
			name:  "unknown kind is untouched",
			input: "> [!DANGER]\n> x\n",
			want:  "> [!DANGER]\n> x\n",
		},
		{
			name:  "marker without quote is untouched",
			input: "[!NOTE] not quoted\n",
			want:  "[!NOTE] not quoted\n",
		},
		{
			name:  "marker after text is untouched",
			input: "text > [!NOTE]\n",
			want:  "text > [!NOTE]\n",
		},
		{
			name:  "space inside marker is untouched",
			input: "> [! NOTE]\n",
			want:  "> [! NOTE]\n",
		},
		{
			name:  "CRLF input",
			input: "> [!NOTE]\r\n> hello\r\nafter\r\n",
			want:  "```{note}\nhello\n```\nafter\n",
		},
		{
			name:  "lone CR input",
			input: "before\r> [!TIP] t\rafter",
			want:  "before\n```{tip}\nt\n```\nafter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Rewrite(tt.input))
		})
	}
}

func TestRewrite_PassThroughWithoutCallouts(t *testing.T) {
	inputs := []string{
		"# Title\n\nSome text.\n",
		"no terminator",
		"> quote\n> more\n",
		"```go\nfmt.Println(1)\n```\n",
		"\n\n\n",
		"| a | b |\n|---|---|\n",
	}
	for _, in := range inputs {
		assert.Equal(t, in, Rewrite(in))
	}

	crlf := "line one\r\nline two\r\n\r\nend"
	assert.Equal(t, "line one\nline two\n\nend", Rewrite(crlf))
}

func TestRewrite_CRLFMatchesLF(t *testing.T) {
	lf := "Intro\n\n> [!NOTE] inline\n> a\n>\n> b\n\n> [!CAUTION]\nTail\n"
	crlf := strings.ReplaceAll(lf, "\n", "\r\n")

	got := Rewrite(crlf)
	require.NotContains(t, got, "\r")
	assert.Equal(t, Rewrite(lf), got)
}

func TestRewrite_PreservesSurroundingText(t *testing.T) {
	before := "Para one.\n\nPara two with > inside.\n\n"
	after := "\n## Heading\n\n- item\n"
	got := Rewrite(before + "> [!TIP]\n> body\n" + after)

	require.True(t, strings.HasPrefix(got, before))
	require.True(t, strings.HasSuffix(got, after))
	assert.Equal(t, before+"```{tip}\nbody\n```\n"+after, got)
}

func TestRewrite_Concurrent(t *testing.T) {
	in := "> [!NOTE]\n> hello\n"
	want := "```{note}\nhello\n```\n"

	var wg sync.WaitGroup
	results := make([]string, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Rewrite(in)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestRewriteSource(t *testing.T) {
	RewriteSource(nil)

	empty := ""
	RewriteSource(&empty)
	assert.Equal(t, "", empty)

	src := "> [!NOTE]\n> hello\n"
	RewriteSource(&src)
	assert.Equal(t, "```{note}\nhello\n```\n", src)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "a\nb\nc\n\n", Normalize("a\r\nb\rc\n\r\n"))
	assert.Equal(t, "plain\n", Normalize("plain\n"))
}

func TestIsOpening(t *testing.T) {
	assert.True(t, IsOpening("> [!NOTE] x\n"))
	assert.True(t, IsOpening(">\u3000[!tip]"))
	assert.False(t, IsOpening("> plain"))
	assert.False(t, IsOpening("> [!DANGER]"))
}

func TestParseKind(t *testing.T) {
	k, ok := ParseKind("WARNING")
	require.True(t, ok)
	assert.Equal(t, Warning, k)

	_, ok = ParseKind("danger")
	assert.False(t, ok)

	assert.Equal(t, []Kind{Note, Tip, Warning, Important, Caution}, Kinds())
}
