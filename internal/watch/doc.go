// Package watch rebuilds documentation when sources change.
//
// A Watcher observes the source tree (and optionally the configuration file)
// with fsnotify, coalesces bursts of events into one request, and runs at
// most one build at a time. Requests arriving while a build runs collapse
// into a single follow-up build. An optional interval schedules periodic
// rebuilds through gocron.
package watch
