// Package runstore provides persistent storage for run traces. A trace is
// the append-only sequence of state snapshots a pipeline run produces, one
// record per completed step, useful for auditing self-correction behavior
// and debugging degraded runs.
package runstore

import (
	"context"
	"errors"
	"time"
)

// Record is one step of a run trace.
type Record struct {
	// RunID identifies the pipeline run.
	RunID string

	// Step is the step that produced this snapshot.
	Step string

	// Sequence is the 1-based position of the step within the run.
	Sequence int

	// Timestamp is when the record was created.
	Timestamp time.Time

	// State is the JSON-encoded run state after the step.
	State []byte
}

// Store persists run traces.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append adds a record to a run's trace. Records within a run must
	// arrive with strictly increasing sequence numbers.
	Append(ctx context.Context, rec Record) error

	// List returns a run's trace ordered by sequence.
	// Returns ErrRunNotFound if the run has no records.
	List(ctx context.Context, runID string) ([]Record, error)

	// DeleteRun removes all records for a run.
	// Returns nil if the run has no records.
	DeleteRun(ctx context.Context, runID string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Sentinel errors for trace operations.
var (
	// ErrRunNotFound indicates a run has no trace records.
	ErrRunNotFound = errors.New("run trace not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("run store closed")
)
