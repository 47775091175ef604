package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Document
	}{
		{
			name:  "no frontmatter",
			input: "# Title\n\nHello\n",
			want:  Document{Body: "# Title\n\nHello\n", Line: 1},
		},
		{
			name:  "yaml frontmatter",
			input: "---\ntitle: Intro\n---\n# Title\n",
			want:  Document{Raw: "title: Intro\n", Body: "# Title\n", Had: true, Line: 4},
		},
		{
			name:  "crlf",
			input: "---\r\ntitle: x\r\n---\r\nbody\r\n",
			want:  Document{Raw: "title: x\r\n", Body: "body\r\n", Had: true, Line: 4},
		},
		{
			name:  "empty block",
			input: "---\n---\nbody\n",
			want:  Document{Body: "body\n", Had: true, Line: 3},
		},
		{
			name:  "closing delimiter at end of input",
			input: "---\na: 1\nb: 2\n---",
			want:  Document{Raw: "a: 1\nb: 2\n", Had: true, Line: 5},
		},
		{
			name:  "thematic break later in document is not frontmatter",
			input: "text\n---\nmore\n",
			want:  Document{Body: "text\n---\nmore\n", Line: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Split(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplit_MissingClosingDelimiter(t *testing.T) {
	_, err := Split("---\ntitle: x\n# Title\n")
	require.ErrorIs(t, err, ErrMissingClosingDelimiter)
}

func TestFields(t *testing.T) {
	doc, err := Split("---\ntitle: Guide\nweight: 3\ntags: [a, b]\n---\nbody\n")
	require.NoError(t, err)

	fields, err := doc.Fields()
	require.NoError(t, err)
	assert.Equal(t, "Guide", String(fields, "title"))
	assert.Equal(t, "3", String(fields, "weight"))
	assert.Equal(t, "", String(fields, "tags"))
	assert.Equal(t, "", String(fields, "missing"))

	empty, err := Document{}.Fields()
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestParseYAML_Invalid(t *testing.T) {
	_, err := ParseYAML("title: [unclosed\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse frontmatter")
}
