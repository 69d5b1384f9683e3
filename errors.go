package corosched

import (
	"errors"
	"fmt"
)

var (
	// ErrCoroutineDone signals normal, exception-free completion of a
	// Coroutine's Next method. It is not itself routed through the
	// exception/backtrace machinery.
	ErrCoroutineDone = errors.New("corosched: coroutine has no more values")

	// ErrEmptyReturn is the cause wrapped by the UsageError raised when
	// Return is called with zero values.
	ErrEmptyReturn = errors.New("corosched: Return requires at least one value")

	// ErrTaskSuspended is the panic value used by Schedule when called
	// against a Task that is currently parked on an AsynchronousCall.
	ErrTaskSuspended = errors.New("corosched: task is suspended on an asynchronous call")

	// ErrWakeBeforeArm is the panic value used by BaseCall.Wake when called
	// before the owning AsynchronousCall has been armed by the scheduler.
	ErrWakeBeforeArm = errors.New("corosched: Wake called before Arm")

	// ErrSchedulerClosed is returned by a second Scheduler.Close, and is the
	// panic value used by NewTask and Schedule once Close has been called.
	ErrSchedulerClosed = errors.New("corosched: scheduler is closed")
)

// UsageError indicates that the coroutine author (not the scheduler, and not
// external I/O) misused the framework API, e.g. constructing a Return
// envelope with no values. UsageErrors are raised synchronously, as panics,
// from within the Task step that discovers them, and are routed into the
// current coroutine's unwind path exactly like any other exception.
type UsageError struct {
	Cause   error
	Message string
}

func (e *UsageError) Error() string {
	if e.Message == "" {
		return "corosched: usage error"
	}
	return e.Message
}

// Unwrap returns the underlying cause for use with errors.Is and errors.As.
func (e *UsageError) Unwrap() error {
	return e.Cause
}

// TypeFault indicates a coroutine yielded a value the scheduler does not
// recognise as a legal YieldedItem. It carries the offending value for
// diagnostic purposes.
type TypeFault struct {
	Value   any
	Message string
}

func (e *TypeFault) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("corosched: unrecognised yielded value of type %T", e.Value)
	}
	return e.Message
}

// WrapError wraps an error with a message and preserves the cause chain, so
// that errors.Is/errors.As continue to match against cause.
func WrapError(message string, cause error) error {
	return fmt.Errorf("%s: %w", message, cause)
}
