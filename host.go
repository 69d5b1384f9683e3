package corosched

import "time"

// HostLoop is the event-driven host runtime the Scheduler embeds into: the
// minimal contract is "let me run again on your next tick" plus "fire this
// once after a delay", both of which must be delivered on the host's own
// goroutine. corohost.Loop is the reference implementation; any reactor
// capable of satisfying this interface (a GUI toolkit's event loop, an
// existing server's poller) may be used instead.
type HostLoop interface {
	// SetTickHandler registers the function the host invokes once per
	// zero-delay tick iteration while armed. It is called exactly once, by
	// NewScheduler, before any other HostLoop method.
	SetTickHandler(fn func())

	// ArmTick and DisarmTick control whether the host repeats its
	// zero-delay tick. The scheduler arms when it has ready or parked work,
	// and disarms once it has none.
	ArmTick()
	DisarmTick()

	// StartTimer arranges for fn to run once, after d, on the host's own
	// goroutine. The returned cancel function is idempotent and safe to
	// call after the timer has already fired.
	StartTimer(d time.Duration, fn func()) (cancel func())

	// Post marshals fn onto the host's own goroutine, for use by
	// AsynchronousCall implementations whose external event source fires
	// from another goroutine.
	Post(fn func())
}
