package corosched

import (
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// taskQueue is the ready queue: a plain FIFO (push at the back, pop from the
// front). Both freshly scheduled Tasks (NewTask, AsynchronousCall.Wake) and
// Tasks re-queued after a Plain yield enter at the same end; the apparent
// priority given to newly (re)scheduled Tasks is an emergent property of
// strict FIFO ordering rather than a second lane.
type taskQueue struct {
	items []*Task
}

func (q *taskQueue) pushBack(t *Task) {
	q.items = append(q.items, t)
}

func (q *taskQueue) popFront() (*Task, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	t := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return t, true
}

func (q *taskQueue) Len() int { return len(q.items) }

// TaskHandle is the caller-visible reference to a Task created via
// Scheduler.NewTask: enough to observe completion, not enough to reach into
// Task internals.
type TaskHandle struct {
	task *Task
}

// ID returns the Task's scheduler-assigned identifier.
func (h *TaskHandle) ID() uint64 { return h.task.ID() }

// Name returns the Task's diagnostic name.
func (h *TaskHandle) Name() string { return h.task.Name() }

// OnDone registers fn to be called exactly once, with the final Return
// envelope, when the Task terminates normally. OnDone is not invoked if the
// Task terminates exceptionally; use Scheduler.OnFatalError to observe
// that. Calling OnDone after the Task has already completed is a no-op.
func (h *TaskHandle) OnDone(fn func(*ReturnEnvelope)) {
	h.task.onDone = fn
}

// Scheduler is a single-threaded, cooperative scheduler embedded in a
// HostLoop: it owns a FIFO of ready Tasks, drives each through a bounded
// number of micro-steps per batch, and arms/disarms the host's tick in step
// with whether it has ready or parked work.
type Scheduler struct {
	host HostLoop

	ready  taskQueue
	parked map[*Task]struct{}

	liveTasks   int
	doneEmitted bool
	tickArmed   bool
	closed      bool
	nextID      uint64

	printUncaught          bool
	maxTaskIterations      int
	maxSchedulerIterations int
	maxIterationTime       time.Duration
	averageSchedulerTime   time.Duration

	log     *logiface.Logger[*stumpy.Event]
	limiter *catrate.Limiter

	onDone          func()
	onLongIteration func(time.Duration, *Task)
	onFatalError    func(error, *Task)
}

// NewScheduler constructs a Scheduler bound to host. host.SetTickHandler is
// called once, during construction, to register the scheduler's batch
// runner.
func NewScheduler(host HostLoop, opts ...Option) (*Scheduler, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}

	log := cfg.logger
	if log == nil {
		log = defaultLogger()
	}

	limiter := cfg.limiter
	if !cfg.limiterSet {
		limiter = defaultLimiter()
	}

	s := &Scheduler{
		host:                   host,
		parked:                 make(map[*Task]struct{}),
		printUncaught:          cfg.printUncaught,
		maxTaskIterations:      cfg.maxTaskIterations,
		maxSchedulerIterations: cfg.maxSchedulerIterations,
		maxIterationTime:       cfg.maxIterationTime,
		averageSchedulerTime:   cfg.averageSchedulerTime,
		log:                    log,
		limiter:                limiter,
	}
	host.SetTickHandler(s.runBatch)
	return s, nil
}

// Host returns the HostLoop this Scheduler is bound to, for use by
// AsynchronousCall implementations that need to register timers or marshal
// callbacks.
func (s *Scheduler) Host() HostLoop { return s.host }

// OnDone registers fn to be called exactly once, the moment the Scheduler's
// live-task count first reaches zero. It is idempotent: further completions
// do not re-trigger it.
func (s *Scheduler) OnDone(fn func()) { s.onDone = fn }

// OnLongIteration registers fn to be called whenever a single Task's step
// exceeds MaxIterationTime within a batch.
func (s *Scheduler) OnLongIteration(fn func(time.Duration, *Task)) { s.onLongIteration = fn }

// OnFatalError registers fn to be called whenever an exception escapes a
// Task's top-level coroutine unhandled.
func (s *Scheduler) OnFatalError(fn func(error, *Task)) { s.onFatalError = fn }

// Close tears down the Scheduler: it disarms the host tick, and any further
// NewTask/Schedule call panics with ErrSchedulerClosed. Tasks already
// parked on an AsynchronousCall are left alone; their eventual Wake still
// runs, but the resulting Task is not rescheduled.
func (s *Scheduler) Close() error {
	if s.closed {
		return ErrSchedulerClosed
	}
	s.closed = true
	if s.tickArmed {
		s.tickArmed = false
		s.host.DisarmTick()
	}
	return nil
}

// NewTask creates a Task to drive co, scheduling it for its first step on
// the next batch. If owner is given, it becomes the Task's lifecycle
// parent; otherwise the Scheduler itself is the owner. NewTask panics with
// ErrSchedulerClosed if called after Close.
func (s *Scheduler) NewTask(co Coroutine, owner ...Owner) *TaskHandle {
	if s.closed {
		panic(ErrSchedulerClosed)
	}

	var o Owner = s
	if len(owner) > 0 && owner[0] != nil {
		o = owner[0]
	}

	s.nextID++
	t := &Task{
		id:      s.nextID,
		owner:   o,
		current: co,
		result:  nothingReturn(),
	}

	o.own(t)
	s.liveTasks++
	s.schedule(t)
	return &TaskHandle{task: t}
}

// Schedule places t on the ready queue and arms the host tick. Calling
// Schedule against a Task that is currently parked on an AsynchronousCall is
// a usage error; a parked Task is resumed only via that call's Wake.
func (s *Scheduler) Schedule(t *Task) {
	if s.closed {
		panic(ErrSchedulerClosed)
	}
	if _, parked := s.parked[t]; parked {
		panic(ErrTaskSuspended)
	}
	s.schedule(t)
}

func (s *Scheduler) schedule(t *Task) {
	if s.closed {
		return
	}
	s.ready.pushBack(t)
	s.armTick()
}

// wake is invoked by BaseCall.Wake once its external event resolves.
func (s *Scheduler) wake(t *Task, result any, err error) {
	delete(s.parked, t)
	if err != nil {
		t.seq++
		t.pendingException = &CoException{Original: err, frames: []Frame{{Coroutine: t.currentName(), Seq: t.seq}}}
		t.pendingSend = nil
	} else {
		t.pendingSend = result
		t.pendingException = nil
	}
	s.schedule(t)
}

func (s *Scheduler) armTick() {
	if !s.tickArmed {
		s.tickArmed = true
		s.host.ArmTick()
	}
}

func (s *Scheduler) disarmTickIfIdle() {
	if s.tickArmed && s.ready.Len() == 0 && len(s.parked) == 0 {
		s.tickArmed = false
		s.host.DisarmTick()
	}
}

// own implements Owner: the Scheduler is the default lifecycle parent for
// any Task created without an explicit owner. The Scheduler's own
// liveTasks/OnDone bookkeeping (see NewTask/releaseTask) happens
// unconditionally for every Task regardless of owner, so own is a no-op
// here; it exists only so *Scheduler satisfies Owner.
func (s *Scheduler) own(t *Task) {}

// release implements Owner; see own.
func (s *Scheduler) release(t *Task) {}

// runBatch is the Scheduler's HostLoop tick handler: it services up to
// MaxSchedulerIterations ready Tasks, bounded by MaxIterationTime per Task
// and AverageSchedulerTime overall.
func (s *Scheduler) runBatch() {
	batchStart := time.Now()
	lastStepEnd := batchStart

	for i := 0; i < s.maxSchedulerIterations; i++ {
		if s.ready.Len() == 0 {
			break
		}
		t, _ := s.ready.popFront()

		res := s.runStep(t)

		now := time.Now()
		stepDuration := now.Sub(lastStepEnd)
		lastStepEnd = now
		timeout := stepDuration > s.maxIterationTime
		if timeout {
			if s.onLongIteration != nil {
				s.onLongIteration(stepDuration, t)
			}
			s.logLongIteration(stepDuration, t)
		}

		switch res.Outcome {
		case StepAsync:
			s.armAsync(t, res.Call)
		case StepFinished:
			s.finishTask(t, res)
			if res.Err != nil {
				// On Finished(exception): release, surface, and break the
				// batch rather than continue servicing the rest of the ready
				// queue this tick.
				s.disarmTickIfIdle()
				return
			}
		case StepPlain:
			s.ready.pushBack(t)
		}

		if timeout || now.Sub(batchStart) > s.averageSchedulerTime {
			break
		}
	}

	s.disarmTickIfIdle()
}

// runStep wraps Task.step with a defensive recover, in case a bug in the
// Task machinery itself (rather than the coroutine it drives) panics.
func (s *Scheduler) runStep(t *Task) (res StepResult) {
	defer func() {
		if r := recover(); r != nil {
			res = StepResult{Outcome: StepFinished, Err: wrapException(asError(r), Frame{Coroutine: t.currentName(), Seq: -1})}
		}
	}()
	return t.step(s.maxTaskIterations)
}

func asError(r any) error {
	if e, ok := r.(error); ok {
		return e
	}
	return &TypeFault{Value: r, Message: "corosched: internal scheduler panic"}
}

// armAsync installs the CallContext and arms call. A failure to arm is
// treated as an immediate fatal failure of the Task, released and surfaced
// the same way as an exception escaping step(), but without breaking the
// batch: an Arm failure is discovered before the Task resumes at all, unlike
// an exception escaping a live step.
func (s *Scheduler) armAsync(t *Task, call AsynchronousCall) {
	s.parked[t] = struct{}{}
	call.setContext(&CallContext{Task: t, Scheduler: s})
	if err := call.Arm(); err != nil {
		delete(s.parked, t)
		s.logArmFailure(err, t)
		if s.onFatalError != nil {
			s.onFatalError(err, t)
		}
		s.releaseTask(t)
	}
}

func (s *Scheduler) finishTask(t *Task, res StepResult) {
	delete(s.parked, t)
	if res.Err != nil {
		if s.printUncaught {
			s.logFatal(res.Err, t)
		}
		if s.onFatalError != nil {
			s.onFatalError(res.Err, t)
		}
	} else if t.onDone != nil {
		t.onDone(res.Result)
	}
	s.releaseTask(t)
}

// releaseTask runs the Task's owner-specific release hook (which may be a
// GroupOwner tracking a narrower lifecycle) and then the Scheduler's own
// unconditional liveTasks bookkeeping: every Task counts toward the
// Scheduler's "all done" notification regardless of which Owner it was
// created under.
func (s *Scheduler) releaseTask(t *Task) {
	t.owner.release(t)
	s.liveTasks--
	if s.liveTasks == 0 && !s.doneEmitted {
		s.doneEmitted = true
		if s.onDone != nil {
			s.onDone()
		}
	}
}
