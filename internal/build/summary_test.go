package build

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"git.home.luguber.info/inful/docprep/internal/callout"
)

func TestSummaryString(t *testing.T) {
	s := &Summary{
		Documents: 3,
		Written:   2,
		Skipped:   1,
		Callouts:  map[callout.Kind]int{callout.Tip: 1, callout.Note: 2},
		Bytes:     2048,
		Duration:  1500 * time.Millisecond,
	}
	assert.Equal(t, "3 documents (2 written, 1 skipped, 0 failed), 3 callouts [note=2 tip=1], 2.0 kB in 1.5s", s.String())
	assert.Equal(t, 3, s.CalloutTotal())
	assert.Equal(t, "success", s.Outcome())
}

func TestSummaryString_DryRunAndFailures(t *testing.T) {
	s := &Summary{
		Documents: 1,
		DryRun:    true,
		Changed:   []string{"a.md"},
		Failed:    []DocError{{Path: "a.md", Err: errors.New("x")}},
		Removed:   2,
		Assets:    1200,
	}
	assert.Equal(t, "1 document (dry run, 1 would change, 0 skipped, 1 failed), no callouts, 2 removed, 1,200 assets, 0 B in 0s", s.String())
	assert.Equal(t, "failed", s.Outcome())
}

func TestDocError(t *testing.T) {
	cause := errors.New("broken")
	err := DocError{Path: "a.md", Err: cause}
	assert.Equal(t, "a.md: broken", err.Error())
	assert.ErrorIs(t, err, cause)
}
