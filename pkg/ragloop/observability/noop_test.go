package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestNoopMetrics_DoesNotPanic(t *testing.T) {
	m := NoopMetrics{}
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordStepExecution(ctx, "retrieve", 100*time.Millisecond, nil)
		m.RecordStepExecution(ctx, "retrieve", 100*time.Millisecond, errors.New("test"))
		m.RecordStepExecution(nil, "", 0, nil)
		m.RecordPipelineRun(ctx, true, 500*time.Millisecond)
		m.RecordPipelineRun(nil, false, 0)
		m.RecordSelfCorrection(ctx, "rewrite")
		m.RecordSelfCorrection(nil, "")
	})
}

func TestNoopSpanManager_StartSpans(t *testing.T) {
	sm := NoopSpanManager{}
	ctx := context.Background()

	newCtx, span := sm.StartRunSpan(ctx, "run-1")
	assert.Equal(t, ctx, newCtx, "context should be unchanged")
	assert.NotNil(t, span)
	assert.False(t, span.IsRecording())

	newCtx, span = sm.StartStepSpan(ctx, "retrieve")
	assert.Equal(t, ctx, newCtx)
	assert.False(t, span.IsRecording())
}

func TestNoopSpanManager_EndSpanWithError(t *testing.T) {
	sm := NoopSpanManager{}

	assert.NotPanics(t, func() {
		sm.EndSpanWithError(nil, nil)

		_, span := sm.StartRunSpan(context.Background(), "r")
		sm.EndSpanWithError(span, nil)

		_, span = sm.StartRunSpan(context.Background(), "r")
		sm.EndSpanWithError(span, errors.New("test error"))
	})
}

func TestNoopSpanManager_AddSpanEvent(t *testing.T) {
	sm := NoopSpanManager{}

	assert.NotPanics(t, func() {
		sm.AddSpanEvent(context.Background(), "event", attribute.String("key", "value"))
		sm.AddSpanEvent(context.Background(), "")
	})
}

func TestNoopImplementations_FullRunShape(t *testing.T) {
	metrics := NoopMetrics{}
	spans := NoopSpanManager{}
	ctx := context.Background()

	ctx, runSpan := spans.StartRunSpan(ctx, "run-123")
	for _, step := range []string{"retrieve", "grade_documents", "generate"} {
		stepCtx, stepSpan := spans.StartStepSpan(ctx, step)
		metrics.RecordStepExecution(stepCtx, step, time.Millisecond, nil)
		spans.EndSpanWithError(stepSpan, nil)
	}
	metrics.RecordSelfCorrection(ctx, "regeneration")
	metrics.RecordPipelineRun(ctx, false, 100*time.Millisecond)
	spans.EndSpanWithError(runSpan, nil)
}
