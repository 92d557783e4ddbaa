package ragloop

import "context"

// StepEvent reports one completed step of a streamed run. The terminal
// event carries either the Result or the run error, never both.
type StepEvent struct {
	// RunID identifies the run, matching the run-trace store key.
	RunID string

	// Step is the step that just completed.
	Step Step

	// Sequence is the 1-based position of the step within the run.
	Sequence int

	// State is a snapshot of the run state after the step.
	State RunState

	// Final marks the terminal event. Exactly one Final event is emitted
	// per stream, always last.
	Final bool

	// Result is set on the terminal event of a run that produced an
	// outcome.
	Result *Result

	// Err is set on the terminal event of a run that failed outright
	// (cancellation or a step panic).
	Err error
}

// Stream executes the control loop like Run but emits a StepEvent after
// every completed step, then a terminal event carrying the Result or the
// run error. The channel is closed after the terminal event.
//
// An empty question is rejected synchronously, before any channel exists.
// The consumer must drain the channel; events are delivered on an
// unbuffered channel so an abandoned consumer stalls the run until its
// context is cancelled.
func (p *Pipeline) Stream(ctx context.Context, question string) (<-chan StepEvent, error) {
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	events := make(chan StepEvent)
	go func() {
		defer close(events)

		emit := func(ev StepEvent) {
			select {
			case events <- ev:
			case <-ctx.Done():
			}
		}

		var runID string
		result, err := p.run(ctx, question, func(id string, step Step, sequence int, state RunState) {
			runID = id
			emit(StepEvent{RunID: id, Step: step, Sequence: sequence, State: state})
		})
		if err != nil {
			emit(StepEvent{RunID: runID, Final: true, Err: err})
			return
		}
		emit(StepEvent{RunID: runID, Final: true, Result: &result})
	}()
	return events, nil
}
