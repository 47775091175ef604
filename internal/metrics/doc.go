// Package metrics records build observability data.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so call sites never need nil checks. The Prometheus
// implementation is activated by the watch command when metrics are enabled
// in the configuration and exposed through HTTPHandler.
package metrics
