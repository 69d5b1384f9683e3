package corosched

import "time"

// All returns a Coroutine that runs each of coroutines, in order, to
// completion as a subcoroutine, gathering their results, and completes with
// a Return envelope whose values are each subcoroutine's own unwrapped
// result (bare for a single-value Return, a []any tuple for a multi-value
// one), in the same order as given. If any coroutine raises, All does not
// catch it: the exception propagates to All's own caller, per the ordinary
// Sub unwind path.
//
// This is a fan-out convenience, not a form of concurrency: coroutines still
// run strictly one at a time, cooperatively, exactly as Sub delegation
// always does.
func All(coroutines ...Coroutine) Coroutine {
	return &gatherCoroutine{remaining: coroutines}
}

type gatherCoroutine struct {
	remaining []Coroutine
	results   []any
	step      int
}

func (g *gatherCoroutine) Next(sent any, thrown error) (YieldedItem, error) {
	if thrown != nil {
		return YieldedItem{}, thrown
	}

	if g.step > 0 {
		// sent is already unwrapped by Task.finish: a bare value for a
		// single-value Return, a []any tuple for a multi-value one.
		g.results = append(g.results, sent)
	}

	if g.step >= len(g.remaining) {
		if len(g.results) == 0 {
			return ReturnVal(nothingReturn()), nil
		}
		return ReturnVal(Return(g.results...)), nil
	}

	co := g.remaining[g.step]
	g.step++
	return Sub(co), nil
}

// CallLater arranges for fn to run once, after d, on host's own goroutine,
// independent of any Task or Coroutine. It is a thin convenience over
// HostLoop.StartTimer for callbacks that don't need the coroutine machinery
// at all.
func CallLater(host HostLoop, d time.Duration, fn func()) (cancel func()) {
	return host.StartTimer(d, fn)
}
