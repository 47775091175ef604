package state

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_Documents(t *testing.T) {
	ctx := context.Background()
	s := newMemoryStore(t)

	_, ok, err := s.Get(ctx, "a.md")
	require.NoError(t, err)
	assert.False(t, ok)

	at := time.Unix(1700000000, 0)
	require.NoError(t, s.Put(ctx, Document{Path: "b.md", Fingerprint: "fb", BuildID: "b1", UpdatedAt: at}))
	require.NoError(t, s.Put(ctx, Document{Path: "a.md", Fingerprint: "fa", BuildID: "b1", UpdatedAt: at}))

	doc, ok, err := s.Get(ctx, "a.md")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Document{Path: "a.md", Fingerprint: "fa", BuildID: "b1", UpdatedAt: at}, doc)

	require.NoError(t, s.Put(ctx, Document{Path: "a.md", Fingerprint: "fa2", BuildID: "b2"}))
	doc, _, err = s.Get(ctx, "a.md")
	require.NoError(t, err)
	assert.Equal(t, "fa2", doc.Fingerprint)
	assert.Equal(t, "b2", doc.BuildID)
	assert.False(t, doc.UpdatedAt.IsZero())

	docs, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a.md", docs[0].Path)
	assert.Equal(t, "b.md", docs[1].Path)

	require.NoError(t, s.Delete(ctx, "b.md"))
	require.NoError(t, s.Delete(ctx, "missing.md"))
	docs, err = s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	require.NoError(t, s.Reset(ctx))
	docs, err = s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestSQLiteStore_Builds(t *testing.T) {
	ctx := context.Background()
	s := newMemoryStore(t)

	base := time.UnixMilli(1700000000000)
	for i, id := range []string{"first", "second", "third"} {
		start := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, s.RecordBuild(ctx, Build{
			ID:         id,
			StartedAt:  start,
			FinishedAt: start.Add(time.Second),
			Documents:  i + 1,
			Callouts:   i,
			Outcome:    "success",
		}))
	}

	builds, err := s.Builds(ctx, 2)
	require.NoError(t, err)
	require.Len(t, builds, 2)
	assert.Equal(t, "third", builds[0].ID)
	assert.Equal(t, "second", builds[1].ID)
	assert.Equal(t, 3, builds[0].Documents)
	assert.Equal(t, time.Second, builds[0].FinishedAt.Sub(builds[0].StartedAt))

	all, err := s.Builds(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSQLiteStore_Meta(t *testing.T) {
	ctx := context.Background()
	s := newMemoryStore(t)

	_, ok, err := s.Meta(ctx, MetaConfigSnapshot)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetMeta(ctx, MetaConfigSnapshot, "one"))
	require.NoError(t, s.SetMeta(ctx, MetaConfigSnapshot, "two"))
	v, ok, err := s.Meta(ctx, MetaConfigSnapshot)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "two", v)
}

func TestOpen_FilePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, Document{Path: "a.md", Fingerprint: "x", BuildID: "b"}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	doc, ok, err := s.Get(ctx, "a.md")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "x", doc.Fingerprint)
}

func TestNoopStore(t *testing.T) {
	ctx := context.Background()
	var s Store = NoopStore{}

	require.NoError(t, s.Put(ctx, Document{Path: "a"}))
	_, ok, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
	docs, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)
	require.NoError(t, s.Close())
}
