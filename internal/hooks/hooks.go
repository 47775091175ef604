// Package hooks implements the named extension points documents pass through
// during a build. The only content event is source-read: every hook connected
// to it may rewrite a document's raw text before it is written for the
// renderer.
package hooks

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	derrors "git.home.luguber.info/inful/docprep/internal/foundation/errors"
	"git.home.luguber.info/inful/docprep/internal/logfields"
)

// Event names an extension point.
type Event string

const (
	EventSourceRead    Event = "source-read"
	EventBuildFinished Event = "build-finished"
)

// Source is the document handed to source-read hooks. Hooks replace Text to
// change what the renderer sees.
type Source struct {
	DocName string // slash separated path without extension
	Path    string // path of the source file
	Text    string
}

// SourceReadHook rewrites a document in place.
type SourceReadHook func(ctx context.Context, src *Source) error

// BuildSummary is passed to build-finished hooks.
type BuildSummary struct {
	BuildID   string
	Documents int
	Failed    int
	Duration  time.Duration
}

// FinishedHook observes a completed build.
type FinishedHook func(ctx context.Context, summary BuildSummary)

// Registration describes one connected hook.
type Registration struct {
	Event    Event
	Name     string
	Priority int // lower runs first
}

type sourceReadEntry struct {
	Registration
	hook SourceReadHook
}

type finishedEntry struct {
	Registration
	hook FinishedHook
}

// Registry holds connected hooks. It is safe for concurrent use; emitting
// while hooks are being connected sees a consistent snapshot.
type Registry struct {
	mu         sync.RWMutex
	sourceRead map[string]sourceReadEntry
	finished   map[string]finishedEntry
	logger     *slog.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sourceRead: make(map[string]sourceReadEntry),
		finished:   make(map[string]finishedEntry),
		logger:     slog.Default(),
	}
}

// SetLogger replaces the logger used for hook diagnostics.
func (r *Registry) SetLogger(l *slog.Logger) {
	if l == nil {
		return
	}
	r.mu.Lock()
	r.logger = l
	r.mu.Unlock()
}

// Connect registers a source-read hook under name.
func (r *Registry) Connect(name string, priority int, hook SourceReadHook) error {
	if name == "" {
		return fmt.Errorf("hook name is required")
	}
	if hook == nil {
		return fmt.Errorf("hook %s: nil function", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sourceRead[name]; exists {
		return fmt.Errorf("hook %s already connected to %s", name, EventSourceRead)
	}
	r.sourceRead[name] = sourceReadEntry{
		Registration: Registration{Event: EventSourceRead, Name: name, Priority: priority},
		hook:         hook,
	}
	return nil
}

// ConnectFinished registers a build-finished hook under name.
func (r *Registry) ConnectFinished(name string, priority int, hook FinishedHook) error {
	if name == "" {
		return fmt.Errorf("hook name is required")
	}
	if hook == nil {
		return fmt.Errorf("hook %s: nil function", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.finished[name]; exists {
		return fmt.Errorf("hook %s already connected to %s", name, EventBuildFinished)
	}
	r.finished[name] = finishedEntry{
		Registration: Registration{Event: EventBuildFinished, Name: name, Priority: priority},
		hook:         hook,
	}
	return nil
}

// Disconnect removes the named hook from event.
func (r *Registry) Disconnect(event Event, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch event {
	case EventSourceRead:
		if _, ok := r.sourceRead[name]; !ok {
			return fmt.Errorf("hook %s not connected to %s", name, event)
		}
		delete(r.sourceRead, name)
	case EventBuildFinished:
		if _, ok := r.finished[name]; !ok {
			return fmt.Errorf("hook %s not connected to %s", name, event)
		}
		delete(r.finished, name)
	default:
		return fmt.Errorf("unknown event %q", event)
	}
	return nil
}

// List returns the hooks connected to event in execution order.
func (r *Registry) List(event Event) []Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Registration
	switch event {
	case EventSourceRead:
		for _, e := range r.sourceRead {
			out = append(out, e.Registration)
		}
	case EventBuildFinished:
		for _, e := range r.finished {
			out = append(out, e.Registration)
		}
	}
	sortRegistrations(out)
	return out
}

// Filter keeps only the source-read hooks whose names appear in allow. An
// empty allowlist keeps everything. It fails when a name matches nothing.
func (r *Registry) Filter(allow []string) error {
	if len(allow) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	keep := make(map[string]sourceReadEntry, len(allow))
	for _, name := range allow {
		e, ok := r.sourceRead[name]
		if !ok {
			return fmt.Errorf("hook %s is not registered", name)
		}
		keep[name] = e
	}
	r.sourceRead = keep
	return nil
}

// EmitSourceRead runs every source-read hook on src in priority order. The
// first failing hook stops the chain. A nil src is a no-op.
func (r *Registry) EmitSourceRead(ctx context.Context, src *Source) error {
	if src == nil {
		return nil
	}

	r.mu.RLock()
	entries := make([]sourceReadEntry, 0, len(r.sourceRead))
	for _, e := range r.sourceRead {
		entries = append(entries, e)
	}
	logger := r.logger
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		return lessRegistration(entries[i].Registration, entries[j].Registration)
	})

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.hook(ctx, src); err != nil {
			return derrors.WrapError(err, derrors.CategoryHook, "source-read hook failed").
				WithContext("hook", e.Name).
				WithContext("docname", src.DocName).
				Build()
		}
		logger.Debug("Hook applied", logfields.Event(string(EventSourceRead)), logfields.Hook(e.Name), logfields.DocName(src.DocName))
	}
	return nil
}

// EmitBuildFinished notifies build-finished hooks. Panics in hooks are
// recovered and logged.
func (r *Registry) EmitBuildFinished(ctx context.Context, summary BuildSummary) {
	r.mu.RLock()
	entries := make([]finishedEntry, 0, len(r.finished))
	for _, e := range r.finished {
		entries = append(entries, e)
	}
	logger := r.logger
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		return lessRegistration(entries[i].Registration, entries[j].Registration)
	})

	for _, e := range entries {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("build-finished hook panicked", logfields.Hook(e.Name), slog.Any("panic", rec))
				}
			}()
			e.hook(ctx, summary)
		}()
	}
}

func sortRegistrations(regs []Registration) {
	sort.Slice(regs, func(i, j int) bool { return lessRegistration(regs[i], regs[j]) })
}

func lessRegistration(a, b Registration) bool {
	if a.Priority == b.Priority {
		return a.Name < b.Name
	}
	return a.Priority < b.Priority
}
