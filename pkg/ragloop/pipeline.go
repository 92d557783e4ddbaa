package ragloop

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/ragloop/pkg/ragloop/config"
	"github.com/randalmurphal/ragloop/pkg/ragloop/observability"
	"github.com/randalmurphal/ragloop/pkg/ragloop/runstore"
)

// Pipeline is the self-correcting question-answering control loop. It is
// immutable after construction and safe for concurrent use; each Run or
// Stream invocation owns its RunState exclusively.
type Pipeline struct {
	settings config.Settings
	collab   Collaborators
	logger   *slog.Logger
	metrics  observability.MetricsRecorder
	spans    observability.SpanManager
	store    runstore.Store
}

// New creates a Pipeline from the given collaborators. All collaborators
// except Search are required. Settings default to config.Defaults() unless
// overridden with WithSettings.
func New(collab Collaborators, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		settings: config.Defaults(),
		collab:   collab,
		logger:   slog.Default(),
		metrics:  observability.NoopMetrics{},
		spans:    observability.NoopSpanManager{},
	}
	for _, opt := range opts {
		opt(p)
	}

	if err := p.settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	if err := validateCollaborators(collab); err != nil {
		return nil, err
	}
	return p, nil
}

func validateCollaborators(c Collaborators) error {
	switch {
	case c.Retriever == nil:
		return fmt.Errorf("%w: Retriever", ErrMissingCollaborator)
	case c.Relevance == nil:
		return fmt.Errorf("%w: Relevance", ErrMissingCollaborator)
	case c.Groundedness == nil:
		return fmt.Errorf("%w: Groundedness", ErrMissingCollaborator)
	case c.Usefulness == nil:
		return fmt.Errorf("%w: Usefulness", ErrMissingCollaborator)
	case c.Rewriter == nil:
		return fmt.Errorf("%w: Rewriter", ErrMissingCollaborator)
	case c.Generator == nil:
		return fmt.Errorf("%w: Generator", ErrMissingCollaborator)
	}
	return nil
}

// Run executes the control loop for one question and blocks until a
// terminal outcome. An empty question is the only synchronous validation
// error. Cancellation and step panics surface as errors; every other
// failure mode, including the step ceiling, degrades into the returned
// Result so the caller always gets a structured outcome.
func (p *Pipeline) Run(ctx context.Context, question string) (Result, error) {
	return p.run(ctx, question, nil)
}

// run is the shared engine behind Run and Stream. onStep, when non-nil, is
// invoked after every completed step with the post-step state snapshot.
func (p *Pipeline) run(ctx context.Context, question string, onStep func(string, Step, int, RunState)) (Result, error) {
	if question == "" {
		return Result{}, ErrEmptyQuestion
	}

	runID := uuid.New().String()
	state := newRunState(question)
	runTimer := observability.TimedOperation()
	runStart := time.Now()

	observability.LogRunStart(p.logger, runID, question)
	ctx, runSpan := p.spans.StartRunSpan(ctx, runID)

	state, stepCount, err := p.loop(ctx, runID, state, onStep)

	durationMs := runTimer()
	if err != nil {
		observability.LogRunError(p.logger, runID, err, durationMs, string(stateStep(err)))
		p.spans.EndSpanWithError(runSpan, err)
		p.metrics.RecordPipelineRun(ctx, true, time.Since(runStart))
		return Result{}, err
	}

	result := buildResult(state)
	observability.LogRunComplete(p.logger, runID, durationMs, stepCount, result.Degraded)
	p.spans.AddSpanEvent(ctx, "run.complete",
		attribute.Bool("degraded", result.Degraded),
		attribute.Int("steps", stepCount),
	)
	p.spans.EndSpanWithError(runSpan, nil)
	p.metrics.RecordPipelineRun(ctx, result.Degraded, time.Since(runStart))
	return result, nil
}

// loop drives the step machine from StepRetrieve to a terminal outcome.
// The step counter is checked before every dispatch; it is the last-resort
// termination guarantee, independent of the semantic budgets.
func (p *Pipeline) loop(ctx context.Context, runID string, state RunState, onStep func(string, Step, int, RunState)) (RunState, int, error) {
	current := StepRetrieve
	stepCount := 0

	for current != stepEnd {
		if err := ctx.Err(); err != nil {
			return state, stepCount, &CancellationError{Step: current, Cause: err}
		}
		if stepCount >= p.settings.MaxSteps {
			ceiling := &StepCeilingError{Max: p.settings.MaxSteps, LastStep: current}
			p.logger.Error("forcing termination", "run_id", runID, "error", ceiling.Error())
			state = p.forceTerminate(state)
			break
		}

		next, newState, err := p.executeStep(ctx, runID, current, state)
		if err != nil {
			return state, stepCount, err
		}
		state = newState
		stepCount++

		p.recordTrace(ctx, runID, current, stepCount, state)
		if onStep != nil {
			onStep(runID, current, stepCount, state)
		}

		// A verification verdict that routes back to Generate is a
		// regeneration; the counter lives here so the routers stay pure.
		if next == StepGenerate && (current == StepCheckGroundedness || current == StepCheckUsefulness) {
			state.RegenerationCount++
			p.metrics.RecordSelfCorrection(ctx, "regeneration")
		}
		if next == StepTransformQuery {
			p.metrics.RecordSelfCorrection(ctx, "rewrite")
		}

		current = next
	}

	return state, stepCount, nil
}

// executeStep runs one step with panic recovery, timing, and per-step
// observability, then routes to the next step from the post-step state.
func (p *Pipeline) executeStep(ctx context.Context, runID string, step Step, state RunState) (next Step, out RunState, err error) {
	stepLogger := observability.EnrichLogger(p.logger, runID, string(step))
	observability.LogStepStart(stepLogger, string(step))

	stepCtx, stepSpan := p.spans.StartStepSpan(ctx, string(step))
	timer := observability.TimedOperation()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Step: step, Value: r, Stack: string(debug.Stack())}
			out = state
			next = stepEnd
		}
		duration := time.Since(start)
		p.metrics.RecordStepExecution(ctx, string(step), duration, err)
		if err != nil {
			observability.LogStepError(stepLogger, string(step), err)
			p.spans.EndSpanWithError(stepSpan, err)
			return
		}
		observability.LogStepComplete(stepLogger, string(step), timer())
		p.spans.EndSpanWithError(stepSpan, nil)
	}()

	switch step {
	case StepRetrieve:
		out, err = p.retrieve(stepCtx, state)
		next = StepGradeDocuments
	case StepGradeDocuments:
		out, err = p.gradeDocuments(stepCtx, state)
		next = afterGrading(p.settings, out)
	case StepTransformQuery:
		out, err = p.transformQuery(stepCtx, state)
		next = StepRetrieve
	case StepWebSearch:
		out, err = p.webSearch(stepCtx, state)
		next = StepGenerate
	case StepGenerate:
		out, err = p.generate(stepCtx, state)
		next = StepCheckGroundedness
	case StepCheckGroundedness:
		out, err = p.checkGroundedness(stepCtx, state)
		if out.Groundedness == NotGrounded {
			// An ungrounded answer never reaches the usefulness check.
			next = afterVerification(p.settings, out)
		} else {
			next = StepCheckUsefulness
		}
	case StepCheckUsefulness:
		out, err = p.checkUsefulness(stepCtx, state)
		next = afterVerification(p.settings, out)
	default:
		out = state
		err = &StepError{Step: step, Op: "dispatch", Err: fmt.Errorf("unknown step")}
		next = stepEnd
	}

	if err != nil {
		err = &StepError{Step: step, Op: "execute", Err: err}
		next = stepEnd
	}
	return next, out, err
}

// forceTerminate stamps the step-ceiling error code on the state and
// synthesizes a fallback answer when no generation has produced one.
func (p *Pipeline) forceTerminate(state RunState) RunState {
	state.ErrorCode = ErrCodeStepCeiling
	if state.Answer == "" {
		state.Answer = fmt.Sprintf(
			"I was unable to produce a verified answer to: %s", state.OriginalQuestion)
	}
	return state
}

// recordTrace appends a run-trace record. Persistence is best-effort: a
// store failure is logged and never affects the run outcome.
func (p *Pipeline) recordTrace(ctx context.Context, runID string, step Step, sequence int, state RunState) {
	if p.store == nil {
		return
	}
	snapshot, err := json.Marshal(state)
	if err != nil {
		observability.LogTraceError(p.logger, string(step), "marshal", err)
		return
	}
	rec := runstore.Record{
		RunID:     runID,
		Step:      string(step),
		Sequence:  sequence,
		Timestamp: time.Now().UTC(),
		State:     snapshot,
	}
	if err := p.store.Append(ctx, rec); err != nil {
		observability.LogTraceError(p.logger, string(step), "append", err)
	}
}

// stateStep extracts the step from a pipeline error for logging.
func stateStep(err error) Step {
	switch e := err.(type) {
	case *StepError:
		return e.Step
	case *PanicError:
		return e.Step
	case *CancellationError:
		return e.Step
	}
	return ""
}
