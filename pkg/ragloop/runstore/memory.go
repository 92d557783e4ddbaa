package runstore

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory run trace store for testing.
// Data is lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	runs   map[string][]Record
	closed bool
}

// NewMemoryStore creates a new in-memory run trace store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs: make(map[string][]Record),
	}
}

// Append implements Store.
func (m *MemoryStore) Append(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	// Copy the state to avoid retaining the caller's slice
	stored := rec
	stored.State = make([]byte, len(rec.State))
	copy(stored.State, rec.State)

	m.runs[rec.RunID] = append(m.runs[rec.RunID], stored)
	return nil
}

// List implements Store.
func (m *MemoryStore) List(_ context.Context, runID string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	trace, ok := m.runs[runID]
	if !ok {
		return nil, ErrRunNotFound
	}

	// Records arrive in sequence order; return copies to prevent
	// modification
	out := make([]Record, len(trace))
	for i, rec := range trace {
		out[i] = rec
		out[i].State = make([]byte, len(rec.State))
		copy(out[i].State, rec.State)
	}
	return out, nil
}

// DeleteRun implements Store.
func (m *MemoryStore) DeleteRun(_ context.Context, runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	delete(m.runs, runID)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.runs = nil
	return nil
}

// Len returns the total number of records across all runs.
// Useful for testing.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, trace := range m.runs {
		count += len(trace)
	}
	return count
}
