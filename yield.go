package corosched

import "fmt"

// Coroutine is a single step of cooperative, suspendable work. Next is
// invoked by a Task each time the coroutine is resumed: sent carries the
// injected value from the previous yield (a subcoroutine's result, or an
// AsynchronousCall's delivered result), and thrown carries an injected
// exception, if any, in which case sent is always nil.
//
// Next returns ErrCoroutineDone (optionally wrapped) to signal ordinary
// completion with no explicit Return, any other non-nil error to raise an
// exception, or a YieldedItem describing what the coroutine is waiting on
// next.
type Coroutine interface {
	Next(sent any, thrown error) (YieldedItem, error)
}

type yieldKind int

const (
	yieldPlain yieldKind = iota
	yieldSub
	yieldAsync
	yieldReturn
)

// YieldedItem is the closed set of things a Coroutine may yield: cede the
// current time-slice (Plain), delegate to a subcoroutine (Sub), suspend on
// an external event source (Async), or complete with a result (ReturnVal).
// The zero value is equivalent to Plain.
type YieldedItem struct {
	kind  yieldKind
	sub   Coroutine
	async AsynchronousCall
	ret   *ReturnEnvelope
}

// Plain yields control back to the scheduler for one iteration, without
// suspending and without delegating to anything.
func Plain() YieldedItem {
	return YieldedItem{kind: yieldPlain}
}

// Sub delegates execution to a subcoroutine. The calling coroutine is
// resumed, with the subcoroutine's result injected as pending_send, once the
// subcoroutine completes.
func Sub(co Coroutine) YieldedItem {
	return YieldedItem{kind: yieldSub, sub: co}
}

// Async suspends the Task on an AsynchronousCall. The Task parks until the
// call's Wake method is invoked.
func Async(call AsynchronousCall) YieldedItem {
	return YieldedItem{kind: yieldAsync, async: call}
}

// ReturnVal completes the current (sub)coroutine with the given envelope.
func ReturnVal(r *ReturnEnvelope) YieldedItem {
	return YieldedItem{kind: yieldReturn, ret: r}
}

// FuncCoroutine adapts a dynamically-typed step function into a Coroutine.
// fn's returned value is type-switched into a YieldedItem: nil becomes
// Plain, a Coroutine becomes Sub, an AsynchronousCall becomes Async, a
// *ReturnEnvelope becomes ReturnVal, and a YieldedItem is passed through
// unchanged. Any other value is not a legal yield and surfaces as a
// *TypeFault, exactly as an untyped host language would discover the
// mistake only at the point of use.
func FuncCoroutine(fn func(sent any, thrown error) (any, error)) Coroutine {
	return &funcCoroutine{fn: fn}
}

type funcCoroutine struct {
	fn func(sent any, thrown error) (any, error)
}

func (c *funcCoroutine) Next(sent any, thrown error) (YieldedItem, error) {
	v, err := c.fn(sent, thrown)
	if err != nil {
		return YieldedItem{}, err
	}
	switch x := v.(type) {
	case nil:
		return Plain(), nil
	case YieldedItem:
		return x, nil
	case Coroutine:
		return Sub(x), nil
	case AsynchronousCall:
		return Async(x), nil
	case *ReturnEnvelope:
		return ReturnVal(x), nil
	default:
		return YieldedItem{}, &TypeFault{
			Value:   v,
			Message: fmt.Sprintf("corosched: coroutine yielded unrecognised value of type %T", v),
		}
	}
}
