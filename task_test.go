package corosched

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTask(co Coroutine) *Task {
	return &Task{current: co, result: nothingReturn()}
}

func TestTask_PlainYield(t *testing.T) {
	co := FuncCoroutine(func(sent any, thrown error) (any, error) {
		return nil, nil
	})
	res := newTestTask(co).step(3)
	assert.Equal(t, StepPlain, res.Outcome)
}

func TestTask_ReturnCompletion(t *testing.T) {
	co := FuncCoroutine(func(sent any, thrown error) (any, error) {
		return Return("done"), nil
	})
	res := newTestTask(co).step(3)
	require.Equal(t, StepFinished, res.Outcome)
	require.NoError(t, res.Err)
	assert.Equal(t, []any{"done"}, res.Result.Values())
}

func TestTask_ErrCoroutineDoneCompletion(t *testing.T) {
	co := FuncCoroutine(func(sent any, thrown error) (any, error) {
		return nil, ErrCoroutineDone
	})
	res := newTestTask(co).step(3)
	require.Equal(t, StepFinished, res.Outcome)
	require.NoError(t, res.Err)
	assert.Empty(t, res.Result.Values())
}

// TestTask_SubRoundTrip asserts that a subcoroutine's Return value is
// injected, unwrapped, as the caller's next sent value: a multi-value
// Return unwraps as a []any tuple.
func TestTask_SubRoundTrip(t *testing.T) {
	inner := FuncCoroutine(func(sent any, thrown error) (any, error) {
		return Return("x", 2), nil
	})

	var injected any
	outer := FuncCoroutine(func(sent any, thrown error) (any, error) {
		if sent == nil {
			return inner, nil
		}
		injected = sent
		return Return("outer-done"), nil
	})

	res := newTestTask(outer).step(10)
	require.Equal(t, StepFinished, res.Outcome)
	require.NoError(t, res.Err)

	assert.Equal(t, []any{"x", 2}, injected)
	assert.Equal(t, []any{"outer-done"}, res.Result.Values())
}

// TestTask_SubRoundTripSingleValue asserts the single-value unwrap case: a
// Return with exactly one value is injected bare, not as a []any{v} tuple.
func TestTask_SubRoundTripSingleValue(t *testing.T) {
	inner := FuncCoroutine(func(sent any, thrown error) (any, error) {
		return Return("solo"), nil
	})

	var injected any
	outer := FuncCoroutine(func(sent any, thrown error) (any, error) {
		if sent == nil {
			return inner, nil
		}
		injected = sent
		return Return("outer-done"), nil
	})

	res := newTestTask(outer).step(10)
	require.Equal(t, StepFinished, res.Outcome)
	require.NoError(t, res.Err)

	assert.Equal(t, "solo", injected)
}

// TestTask_ExceptionAccumulatesFrames asserts that a synchronously raised
// exception gains one frame per level it unwinds through.
func TestTask_ExceptionAccumulatesFrames(t *testing.T) {
	failing := FuncCoroutine(func(sent any, thrown error) (any, error) {
		return nil, errors.New("inner failure")
	})
	outer := FuncCoroutine(func(sent any, thrown error) (any, error) {
		if thrown != nil {
			return nil, thrown
		}
		return failing, nil
	})

	res := newTestTask(outer).step(10)
	require.Equal(t, StepFinished, res.Outcome)
	require.Error(t, res.Err)

	var ce *CoException
	require.True(t, errors.As(res.Err, &ce))
	assert.Len(t, ce.Frames(), 2)
	assert.Equal(t, "inner failure", ce.Unwrap().Error())
}

// TestTask_ReturnWithNoValuesIsUsageError asserts that Return() with zero
// arguments panics with a UsageError, recovered and routed into the
// raising coroutine's own unwind path.
func TestTask_ReturnWithNoValuesIsUsageError(t *testing.T) {
	co := FuncCoroutine(func(sent any, thrown error) (any, error) {
		return Return(), nil
	})
	res := newTestTask(co).step(3)
	require.Equal(t, StepFinished, res.Outcome)
	require.Error(t, res.Err)

	var ue *UsageError
	assert.True(t, errors.As(res.Err, &ue))
	assert.ErrorIs(t, res.Err, ErrEmptyReturn)
}

// TestTask_TypeFaultOnUnrecognisedYield asserts that a coroutine yielding a
// value outside the closed YieldedItem set surfaces a TypeFault.
func TestTask_TypeFaultOnUnrecognisedYield(t *testing.T) {
	co := FuncCoroutine(func(sent any, thrown error) (any, error) {
		return 42, nil
	})
	res := newTestTask(co).step(3)
	require.Equal(t, StepFinished, res.Outcome)
	require.Error(t, res.Err)

	var tf *TypeFault
	require.True(t, errors.As(res.Err, &tf))
	assert.Equal(t, 42, tf.Value)
}

// TestTask_IterationBudgetCedesControl asserts the fairness guarantee: a
// coroutine that keeps delegating to subcoroutines (and so never cedes on
// its own) cannot hold the Task beyond MaxTaskIterations micro-steps.
func TestTask_IterationBudgetCedesControl(t *testing.T) {
	calls := 0
	var co Coroutine
	co = FuncCoroutine(func(sent any, thrown error) (any, error) {
		calls++
		return co, nil
	})
	res := newTestTask(co).step(3)
	assert.Equal(t, StepPlain, res.Outcome)
	assert.Equal(t, 3, calls)
}
