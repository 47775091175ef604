package watch

// Reason says why a build was requested.
type Reason string

const (
	ReasonInitial  Reason = "initial"
	ReasonChange   Reason = "change"
	ReasonSchedule Reason = "schedule"
	ReasonConfig   Reason = "config"
)

func (r Reason) rank() int {
	switch r {
	case ReasonConfig:
		return 4
	case ReasonInitial:
		return 3
	case ReasonChange:
		return 2
	case ReasonSchedule:
		return 1
	}
	return 0
}

// merge keeps the reason that implies the most work: a configuration
// reload subsumes a content change, which subsumes a scheduled run.
func merge(a, b Reason) Reason {
	if b.rank() > a.rank() {
		return b
	}
	return a
}
