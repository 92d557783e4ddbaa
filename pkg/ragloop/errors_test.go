package ragloop_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/randalmurphal/ragloop/pkg/ragloop"
)

func TestStepError_Unwrap(t *testing.T) {
	base := errors.New("backend down")
	err := &ragloop.StepError{Step: ragloop.StepRetrieve, Op: "execute", Err: base}

	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "retrieve")
	assert.Contains(t, err.Error(), "backend down")
}

func TestCancellationError_Unwrap(t *testing.T) {
	err := &ragloop.CancellationError{
		Step:  ragloop.StepGenerate,
		Cause: context.Canceled,
	}

	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "generate")
}

func TestStepCeilingError_Unwrap(t *testing.T) {
	err := &ragloop.StepCeilingError{Max: 50, LastStep: ragloop.StepGenerate}

	assert.ErrorIs(t, err, ragloop.ErrStepCeiling)
	assert.Contains(t, err.Error(), "50")
}

func TestPanicError_Message(t *testing.T) {
	err := &ragloop.PanicError{
		Step:  ragloop.StepGradeDocuments,
		Value: "boom",
		Stack: "goroutine 1 [running]:",
	}

	assert.Contains(t, err.Error(), "grade_documents")
	assert.Contains(t, err.Error(), "boom")
}
