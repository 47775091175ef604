package metrics

import "time"

// ResultLabel enumerates per-document result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultSkipped ResultLabel = "skipped"
	ResultFailed  ResultLabel = "failed"
)

// BuildOutcome enumerates final build states.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
)

// Recorder defines observability hooks for builds and the documents they
// process. Implementations must be safe for concurrent use.
type Recorder interface {
	ObserveDocumentDuration(d time.Duration)
	IncDocumentResult(result ResultLabel)
	AddCallouts(kind string, n int)
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome BuildOutcome)
	SetWorkers(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

var _ Recorder = NoopRecorder{}

func (NoopRecorder) ObserveDocumentDuration(time.Duration) {}
func (NoopRecorder) IncDocumentResult(ResultLabel)         {}
func (NoopRecorder) AddCallouts(string, int)               {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)    {}
func (NoopRecorder) IncBuildOutcome(BuildOutcome)          {}
func (NoopRecorder) SetWorkers(int)                        {}
