package corohost

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// maxPollDelay bounds how long Run will block when it has no armed tick and
// no pending timer, so that a Post call from another goroutine is never
// kept waiting longer than this, even without a pending wake signal.
const maxPollDelay = 10 * time.Second

// Loop is a single-goroutine reactor: Run must be called from exactly one
// goroutine, and drives both the registered tick handler and any pending
// timers from that goroutine. Post is the only method safe to call from
// other goroutines.
type Loop struct {
	tickHandler func()
	tickArmed   bool

	timers timerHeap

	mu        sync.Mutex
	postQueue []func()
	wake      chan struct{}

	log *logiface.Logger[*stumpy.Event]
}

// New constructs a Loop ready to Run.
func New(opts ...Option) *Loop {
	l := &Loop{
		wake: make(chan struct{}, 1),
	}
	for _, o := range opts {
		if o != nil {
			o.applyLoop(l)
		}
	}
	if l.log == nil {
		l.log = defaultLoopLogger()
	}
	return l
}

// SetTickHandler implements corosched.HostLoop. It must be called before
// Run, and is not safe to call concurrently with Run.
func (l *Loop) SetTickHandler(fn func()) {
	l.tickHandler = fn
}

// ArmTick implements corosched.HostLoop.
func (l *Loop) ArmTick() {
	l.tickArmed = true
}

// DisarmTick implements corosched.HostLoop.
func (l *Loop) DisarmTick() {
	l.tickArmed = false
}

// StartTimer implements corosched.HostLoop: fn runs once, after d, on the
// Loop's own goroutine. The returned cancel is safe to call from any
// goroutine, at any time, including after the timer has already fired.
func (l *Loop) StartTimer(d time.Duration, fn func()) (cancel func()) {
	entry := &timerEntry{when: time.Now().Add(d), fn: fn}
	l.Post(func() {
		heap.Push(&l.timers, entry)
	})
	return func() {
		entry.canceled.Store(true)
	}
}

// Post implements corosched.HostLoop: fn runs on the Loop's own goroutine,
// at the start of its next iteration. Safe to call from any goroutine,
// including the Loop's own.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.postQueue = append(l.postQueue, fn)
	l.mu.Unlock()
	l.signal()
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run drives the Loop until ctx is done, blocking the calling goroutine.
// It is the Loop's single owning goroutine for the remainder of its call.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		l.drainPosted()
		l.runDueTimers()

		if l.tickArmed && l.tickHandler != nil {
			l.tickHandler()
		}
		if l.tickArmed {
			// A repeating zero-delay tick: spin without blocking, draining
			// any Post/timer work each time round so neither starves.
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		case <-time.After(l.nextTimeout()):
		}
	}
}

func (l *Loop) nextTimeout() time.Duration {
	if len(l.timers) == 0 {
		return maxPollDelay
	}
	d := time.Until(l.timers[0].when)
	if d < 0 {
		return 0
	}
	if d > maxPollDelay {
		return maxPollDelay
	}
	return d
}

func (l *Loop) drainPosted() {
	l.mu.Lock()
	jobs := l.postQueue
	l.postQueue = nil
	l.mu.Unlock()
	for _, fn := range jobs {
		l.safeExecute(fn)
	}
}

func (l *Loop) runDueTimers() {
	now := time.Now()
	for len(l.timers) > 0 && !l.timers[0].when.After(now) {
		entry := heap.Pop(&l.timers).(*timerEntry)
		if entry.canceled.Load() {
			continue
		}
		l.safeExecute(entry.fn)
	}
}

func (l *Loop) safeExecute(fn func()) {
	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil && l.log != nil {
			l.log.Err().Any("recovered", r).Log("corohost: panic recovered")
		}
	}()
	fn()
}
