package callout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan(t *testing.T) {
	doc := "# Title\n\n> [!NOTE] inline\n> more\n\ntext\n> [!tip]\n\n> [!Note]\n> a\n> b\n> c\n"

	r := Scan(doc)
	require.Equal(t, 3, r.Len())

	assert.Equal(t, Block{Kind: Note, Line: 3, Lines: 2, Inline: "inline", Body: "inline\nmore\n"}, r.Blocks[0])
	assert.Equal(t, Block{Kind: Tip, Line: 7, Lines: 1}, r.Blocks[1])
	assert.Equal(t, Block{Kind: Note, Line: 9, Lines: 4, Body: "a\nb\nc\n"}, r.Blocks[2])

	assert.Equal(t, map[Kind]int{Note: 2, Tip: 1}, r.Counts())
}

func TestScan_Empty(t *testing.T) {
	assert.Equal(t, 0, Scan("").Len())
	assert.Equal(t, 0, Scan("plain text\n").Len())
	assert.Empty(t, Scan("plain").Counts())
}

func TestScan_AgreesWithRewrite(t *testing.T) {
	doc := "a\r\n> [!WARNING] w\r\n> body\r\nb\r\n"
	r := Scan(doc)
	require.Equal(t, 1, r.Len())
	assert.Equal(t, "a\n"+r.Blocks[0].Fence()+"b\n", Rewrite(doc))
}

func TestBlockFence(t *testing.T) {
	assert.Equal(t, "```{caution}\n```\n", Block{Kind: Caution}.Fence())
	assert.Equal(t, "```{note}\nx\n```\n", Block{Kind: Note, Body: "x\n"}.Fence())
}
