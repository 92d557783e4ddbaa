package runstore_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/ragloop/pkg/ragloop/runstore"
)

func record(runID string, seq int) runstore.Record {
	return runstore.Record{
		RunID:     runID,
		Step:      "retrieve",
		Sequence:  seq,
		Timestamp: time.Now().UTC(),
		State:     []byte(`{"question":"q"}`),
	}
}

func TestMemoryStore_AppendAndList(t *testing.T) {
	ctx := context.Background()
	store := runstore.NewMemoryStore()
	defer store.Close()

	require.NoError(t, store.Append(ctx, record("run-1", 1)))
	require.NoError(t, store.Append(ctx, record("run-1", 2)))
	require.NoError(t, store.Append(ctx, record("run-2", 1)))

	trace, err := store.List(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, trace, 2)
	assert.Equal(t, 1, trace[0].Sequence)
	assert.Equal(t, 2, trace[1].Sequence)
	assert.Equal(t, []byte(`{"question":"q"}`), trace[0].State)

	assert.Equal(t, 3, store.Len())
}

func TestMemoryStore_ListUnknownRun(t *testing.T) {
	store := runstore.NewMemoryStore()
	defer store.Close()

	_, err := store.List(context.Background(), "nope")
	assert.ErrorIs(t, err, runstore.ErrRunNotFound)
}

func TestMemoryStore_DeleteRun(t *testing.T) {
	ctx := context.Background()
	store := runstore.NewMemoryStore()
	defer store.Close()

	require.NoError(t, store.Append(ctx, record("run-1", 1)))
	require.NoError(t, store.DeleteRun(ctx, "run-1"))

	_, err := store.List(ctx, "run-1")
	assert.ErrorIs(t, err, runstore.ErrRunNotFound)

	// Deleting an absent run is not an error.
	assert.NoError(t, store.DeleteRun(ctx, "run-1"))
}

func TestMemoryStore_Closed(t *testing.T) {
	ctx := context.Background()
	store := runstore.NewMemoryStore()
	require.NoError(t, store.Close())

	assert.ErrorIs(t, store.Append(ctx, record("run-1", 1)), runstore.ErrStoreClosed)
	_, err := store.List(ctx, "run-1")
	assert.ErrorIs(t, err, runstore.ErrStoreClosed)
	assert.ErrorIs(t, store.DeleteRun(ctx, "run-1"), runstore.ErrStoreClosed)
}

func TestMemoryStore_CopiesState(t *testing.T) {
	ctx := context.Background()
	store := runstore.NewMemoryStore()
	defer store.Close()

	rec := record("run-1", 1)
	require.NoError(t, store.Append(ctx, rec))
	rec.State[0] = 'X'

	trace, err := store.List(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, byte('{'), trace[0].State[0])
}

func TestMemoryStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	store := runstore.NewMemoryStore()
	defer store.Close()

	const goroutines = 50
	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			runID := "run-" + string(rune('a'+id%5))
			for j := 1; j <= 20; j++ {
				switch j % 3 {
				case 0:
					_ = store.Append(ctx, record(runID, j))
				case 1:
					_, _ = store.List(ctx, runID)
				case 2:
					_ = store.DeleteRun(ctx, runID)
				}
			}
		}(i)
	}
	wg.Wait()
}
