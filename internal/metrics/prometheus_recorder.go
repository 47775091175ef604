package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "docprep"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	documentDuration prom.Histogram
	documentResults  *prom.CounterVec
	callouts         *prom.CounterVec
	buildDuration    prom.Histogram
	buildOutcome     *prom.CounterVec
	workers          prom.Gauge
}

var _ Recorder = (*PrometheusRecorder)(nil)

// NewPrometheusRecorder constructs the metrics and registers them with reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		documentDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "document_duration_seconds",
			Help:      "Time spent processing a single document",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
		documentResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "document_results_total",
			Help:      "Processed documents by result",
		}, []string{"result"}),
		callouts: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "callouts_rewritten_total",
			Help:      "Callout blocks rewritten into admonition fences by kind",
		}, []string{"kind"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
		workers: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "build_workers",
			Help:      "Worker count used by the last build",
		}),
	}
	reg.MustRegister(pr.documentDuration, pr.documentResults, pr.callouts, pr.buildDuration, pr.buildOutcome, pr.workers)
	return pr
}

func (p *PrometheusRecorder) ObserveDocumentDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.documentDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncDocumentResult(result ResultLabel) {
	if p == nil {
		return
	}
	p.documentResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) AddCallouts(kind string, n int) {
	if p == nil || n <= 0 {
		return
	}
	p.callouts.WithLabelValues(kind).Add(float64(n))
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcome) {
	if p == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) SetWorkers(n int) {
	if p == nil {
		return
	}
	p.workers.Set(float64(n))
}
