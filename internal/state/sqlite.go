package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	derrors "git.home.luguber.info/inful/docprep/internal/foundation/errors"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ Store = (*SQLiteStore)(nil)

// Open opens or creates the state database at path. Use ":memory:" for an
// in-memory database. Parent directories are created as needed.
func Open(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, derrors.WrapError(err, derrors.CategoryState, "create state directory").
				WithContext("path", path).
				Build()
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryState, "open state database").
			WithContext("path", path).
			Build()
	}
	// A single connection keeps ":memory:" databases shared and serialises writers.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, derrors.WrapError(err, derrors.CategoryState, "initialize state schema").
			WithContext("path", path).
			Build()
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		path TEXT PRIMARY KEY,
		fingerprint TEXT NOT NULL,
		build_id TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS builds (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL,
		documents INTEGER NOT NULL,
		skipped INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		callouts INTEGER NOT NULL,
		outcome TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_builds_started ON builds(started_at);
	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Get returns the record for path.
func (s *SQLiteStore) Get(ctx context.Context, path string) (Document, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		doc     Document
		updated int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT path, fingerprint, build_id, updated_at FROM documents WHERE path = ?", path,
	).Scan(&doc.Path, &doc.Fingerprint, &doc.BuildID, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, false, nil
	}
	if err != nil {
		return Document{}, false, fmt.Errorf("query document: %w", err)
	}
	doc.UpdatedAt = time.Unix(updated, 0)
	return doc, true, nil
}

// Put inserts or replaces the record for doc.Path. A zero UpdatedAt is set
// to now.
func (s *SQLiteStore) Put(ctx context.Context, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (path, fingerprint, build_id, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET fingerprint = excluded.fingerprint, build_id = excluded.build_id, updated_at = excluded.updated_at`,
		doc.Path, doc.Fingerprint, doc.BuildID, doc.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

// Delete removes the record for path. Missing records are not an error.
func (s *SQLiteStore) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE path = ?", path); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// List returns every record ordered by path.
func (s *SQLiteStore) List(ctx context.Context) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT path, fingerprint, build_id, updated_at FROM documents ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var (
			doc     Document
			updated int64
		)
		if err := rows.Scan(&doc.Path, &doc.Fingerprint, &doc.BuildID, &updated); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc.UpdatedAt = time.Unix(updated, 0)
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return docs, nil
}

// Reset removes every document record.
func (s *SQLiteStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM documents"); err != nil {
		return fmt.Errorf("reset documents: %w", err)
	}
	return nil
}

// RecordBuild stores a build outcome.
func (s *SQLiteStore) RecordBuild(ctx context.Context, b Build) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO builds (id, started_at, finished_at, documents, skipped, failed, callouts, outcome)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.StartedAt.UnixMilli(), b.FinishedAt.UnixMilli(), b.Documents, b.Skipped, b.Failed, b.Callouts, b.Outcome,
	)
	if err != nil {
		return fmt.Errorf("insert build: %w", err)
	}
	return nil
}

// Builds returns up to limit builds, newest first. A non-positive limit
// returns every build.
func (s *SQLiteStore) Builds(ctx context.Context, limit int) ([]Build, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, documents, skipped, failed, callouts, outcome
		FROM builds ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	var builds []Build
	for rows.Next() {
		var (
			b                 Build
			started, finished int64
		)
		if err := rows.Scan(&b.ID, &started, &finished, &b.Documents, &b.Skipped, &b.Failed, &b.Callouts, &b.Outcome); err != nil {
			return nil, fmt.Errorf("scan build: %w", err)
		}
		b.StartedAt = time.UnixMilli(started)
		b.FinishedAt = time.UnixMilli(finished)
		builds = append(builds, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return builds, nil
}

// Meta returns the value stored under key.
func (s *SQLiteStore) Meta(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query meta: %w", err)
	}
	return value, true, nil
}

// SetMeta stores value under key.
func (s *SQLiteStore) SetMeta(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("upsert meta: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
