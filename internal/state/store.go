package state

import (
	"context"
	"time"
)

// Document records the last successful build of one source document.
type Document struct {
	Path        string
	Fingerprint string
	BuildID     string
	UpdatedAt   time.Time
}

// Build records the outcome of one build run.
type Build struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Documents  int
	Skipped    int
	Failed     int
	Callouts   int
	Outcome    string
}

// DocumentStore tracks per-document fingerprints.
type DocumentStore interface {
	Get(ctx context.Context, path string) (Document, bool, error)
	Put(ctx context.Context, doc Document) error
	Delete(ctx context.Context, path string) error
	List(ctx context.Context) ([]Document, error)
	// Reset removes every document record.
	Reset(ctx context.Context) error
}

// BuildStore keeps build history, newest first.
type BuildStore interface {
	RecordBuild(ctx context.Context, b Build) error
	Builds(ctx context.Context, limit int) ([]Build, error)
}

// MetaStore holds small string settings.
type MetaStore interface {
	Meta(ctx context.Context, key string) (string, bool, error)
	SetMeta(ctx context.Context, key, value string) error
}

// Store is the full state interface used by the builder.
type Store interface {
	DocumentStore
	BuildStore
	MetaStore
	Close() error
}

// Meta keys.
const (
	MetaConfigSnapshot = "config_snapshot"
)

// NoopStore satisfies Store without remembering anything. It is used when
// incremental builds are disabled.
type NoopStore struct{}

var _ Store = NoopStore{}

func (NoopStore) Get(context.Context, string) (Document, bool, error) { return Document{}, false, nil }
func (NoopStore) Put(context.Context, Document) error                 { return nil }
func (NoopStore) Delete(context.Context, string) error                { return nil }
func (NoopStore) List(context.Context) ([]Document, error)            { return nil, nil }
func (NoopStore) Reset(context.Context) error                         { return nil }
func (NoopStore) RecordBuild(context.Context, Build) error            { return nil }
func (NoopStore) Builds(context.Context, int) ([]Build, error)        { return nil, nil }
func (NoopStore) Meta(context.Context, string) (string, bool, error)  { return "", false, nil }
func (NoopStore) SetMeta(context.Context, string, string) error       { return nil }
func (NoopStore) Close() error                                        { return nil }
