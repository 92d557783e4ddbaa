package runstore_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/ragloop/pkg/ragloop/runstore"
)

func newSQLiteStore(t *testing.T) *runstore.SQLiteStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "traces.db")
	store, err := runstore.NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_AppendAndList(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	ts := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Append(ctx, runstore.Record{
		RunID:     "run-1",
		Step:      "retrieve",
		Sequence:  1,
		Timestamp: ts,
		State:     []byte(`{"a":1}`),
	}))
	require.NoError(t, store.Append(ctx, runstore.Record{
		RunID:     "run-1",
		Step:      "grade_documents",
		Sequence:  2,
		Timestamp: ts.Add(time.Second),
		State:     []byte(`{"a":2}`),
	}))

	trace, err := store.List(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, trace, 2)
	assert.Equal(t, "retrieve", trace[0].Step)
	assert.Equal(t, "grade_documents", trace[1].Step)
	assert.Equal(t, ts, trace[0].Timestamp)
	assert.Equal(t, []byte(`{"a":2}`), trace[1].State)
}

func TestSQLiteStore_ListUnknownRun(t *testing.T) {
	store := newSQLiteStore(t)

	_, err := store.List(context.Background(), "nope")
	assert.ErrorIs(t, err, runstore.ErrRunNotFound)
}

func TestSQLiteStore_DuplicateSequenceRejected(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	require.NoError(t, store.Append(ctx, runstore.Record{
		RunID: "run-1", Step: "retrieve", Sequence: 1, State: []byte("{}"),
	}))
	err := store.Append(ctx, runstore.Record{
		RunID: "run-1", Step: "retrieve", Sequence: 1, State: []byte("{}"),
	})
	assert.Error(t, err)
}

func TestSQLiteStore_DeleteRun(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	require.NoError(t, store.Append(ctx, runstore.Record{
		RunID: "run-1", Step: "retrieve", Sequence: 1, State: []byte("{}"),
	}))
	require.NoError(t, store.DeleteRun(ctx, "run-1"))

	_, err := store.List(ctx, "run-1")
	assert.ErrorIs(t, err, runstore.ErrRunNotFound)
}

func TestSQLiteStore_Closed(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)
	require.NoError(t, store.Close())

	err := store.Append(ctx, runstore.Record{RunID: "r", Step: "s", Sequence: 1, State: []byte("{}")})
	assert.ErrorIs(t, err, runstore.ErrStoreClosed)

	// Double close is safe.
	assert.NoError(t, store.Close())
}

func TestSQLiteStore_Persistence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "traces.db")

	store, err := runstore.NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Append(ctx, runstore.Record{
		RunID: "run-1", Step: "retrieve", Sequence: 1, State: []byte(`{"q":"x"}`),
	}))
	require.NoError(t, store.Close())

	reopened, err := runstore.NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	trace, err := reopened.List(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, trace, 1)
	assert.Equal(t, []byte(`{"q":"x"}`), trace[0].State)
}
