package ragloop

import (
	"errors"
	"fmt"
)

// Sentinel errors for pipeline construction and invocation.
var (
	// ErrEmptyQuestion indicates Run or Stream was called with an empty
	// question. This is the only validation error surfaced synchronously.
	ErrEmptyQuestion = errors.New("question cannot be empty")

	// ErrMissingCollaborator indicates New was called without a required
	// collaborator.
	ErrMissingCollaborator = errors.New("missing required collaborator")

	// ErrStepCeiling indicates the run exceeded the global step ceiling and
	// was forced to terminate with a fallback answer.
	ErrStepCeiling = errors.New("exceeded step ceiling")
)

// StepError wraps an error with the step it occurred in.
type StepError struct {
	// Step is the pipeline step that failed.
	Step Step
	// Op is the operation that failed (e.g., "execute").
	Op string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	return fmt.Sprintf("step %s: %s: %v", e.Step, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *StepError) Unwrap() error {
	return e.Err
}

// PanicError captures panic information from step execution. It includes
// the stack trace for debugging.
type PanicError struct {
	// Step is the pipeline step that panicked.
	Step Step
	// Value is the value passed to panic().
	Value any
	// Stack is the full stack trace at the point of panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("step %s panicked: %v", e.Step, e.Value)
}

// CancellationError captures the state when a run was cancelled at a step
// boundary.
type CancellationError struct {
	// Step is the step that was about to execute.
	Step Step
	// Cause is the underlying cancellation cause (context.Canceled or
	// context.DeadlineExceeded).
	Cause error
}

// Error implements the error interface.
func (e *CancellationError) Error() string {
	return fmt.Sprintf("cancelled before step %s: %v", e.Step, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *CancellationError) Unwrap() error {
	return e.Cause
}

// StepCeilingError provides context when the global step ceiling is
// exceeded. The run still returns a structured Result with a fallback
// answer; this error is informational.
type StepCeilingError struct {
	// Max is the configured step ceiling.
	Max int
	// LastStep is the step that would have executed next.
	LastStep Step
}

// Error implements the error interface.
func (e *StepCeilingError) Error() string {
	return fmt.Sprintf("exceeded step ceiling (%d) at step %s", e.Max, e.LastStep)
}

// Unwrap returns ErrStepCeiling for errors.Is support.
func (e *StepCeilingError) Unwrap() error {
	return ErrStepCeiling
}
