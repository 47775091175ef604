package build

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"git.home.luguber.info/inful/docprep/internal/callout"
)

// Summary describes a finished build.
type Summary struct {
	BuildID   string
	StartedAt time.Time
	Duration  time.Duration

	Documents int // discovered documents
	Written   int
	Skipped   int // unchanged since the last incremental build
	Removed   int // stale outputs deleted
	Assets    int // static and template files copied
	Failed    []DocError

	Callouts map[callout.Kind]int
	Bytes    int64

	DryRun  bool
	Changed []string // relative paths whose output would change, dry runs only
}

// CalloutTotal returns the number of rewritten callouts over all kinds.
func (s *Summary) CalloutTotal() int {
	n := 0
	for _, c := range s.Callouts {
		n += c
	}
	return n
}

// Outcome returns the status label of the build.
func (s *Summary) Outcome() string {
	if len(s.Failed) > 0 {
		return "failed"
	}
	return "success"
}

// String renders a one line human readable summary.
func (s *Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d document%s", s.Documents, plural(s.Documents))
	if s.DryRun {
		fmt.Fprintf(&b, " (dry run, %d would change", len(s.Changed))
	} else {
		fmt.Fprintf(&b, " (%d written", s.Written)
	}
	fmt.Fprintf(&b, ", %d skipped, %d failed)", s.Skipped, len(s.Failed))

	if total := s.CalloutTotal(); total > 0 {
		fmt.Fprintf(&b, ", %d callout%s [%s]", total, plural(total), s.calloutBreakdown())
	} else {
		b.WriteString(", no callouts")
	}
	if s.Removed > 0 {
		fmt.Fprintf(&b, ", %d removed", s.Removed)
	}
	if s.Assets > 0 {
		fmt.Fprintf(&b, ", %s asset%s", humanize.Comma(int64(s.Assets)), plural(s.Assets))
	}
	fmt.Fprintf(&b, ", %s in %s", humanize.Bytes(uint64(max(s.Bytes, 0))), s.Duration.Round(time.Millisecond))
	return b.String()
}

func (s *Summary) calloutBreakdown() string {
	parts := make([]string, 0, len(s.Callouts))
	for _, k := range callout.Kinds() {
		if n := s.Callouts[k]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", k, n))
		}
	}
	return strings.Join(parts, " ")
}

func (s *Summary) addCallouts(counts map[callout.Kind]int) {
	if len(counts) == 0 {
		return
	}
	if s.Callouts == nil {
		s.Callouts = make(map[callout.Kind]int, len(counts))
	}
	for k, n := range counts {
		s.Callouts[k] += n
	}
}

func (s *Summary) sortChanged() { slices.Sort(s.Changed) }

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
