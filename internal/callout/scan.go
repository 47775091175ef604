package callout

// Report lists the callout blocks found in a document.
type Report struct {
	Blocks []Block
}

// Scan finds the blocks Rewrite would replace, without building output.
func Scan(text string) Report {
	var r Report
	if text == "" {
		return r
	}
	lines := splitLines(Normalize(text))
	for i := 0; i < len(lines); {
		block, next, ok := blockAt(lines, i)
		if !ok {
			i++
			continue
		}
		r.Blocks = append(r.Blocks, block)
		i = next
	}
	return r
}

// Len returns the number of blocks.
func (r Report) Len() int { return len(r.Blocks) }

// Counts returns the number of blocks per kind. Kinds with no blocks are
// omitted.
func (r Report) Counts() map[Kind]int {
	counts := make(map[Kind]int, len(r.Blocks))
	for _, b := range r.Blocks {
		counts[b.Kind]++
	}
	return counts
}
