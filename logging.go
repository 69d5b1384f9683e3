package corosched

import (
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// defaultLogger builds the stumpy-backed logger used when a Scheduler is
// constructed without WithLogger, writing newline-delimited JSON to stderr.
func defaultLogger() *logiface.Logger[*stumpy.Event] {
	return stumpy.L.New(stumpy.L.WithStumpy())
}

// defaultLimiter builds the rate limiter used to throttle long_iteration
// diagnostics when a Scheduler is constructed without WithRateLimiter.
func defaultLimiter() *catrate.Limiter {
	return catrate.NewLimiter(map[time.Duration]int{time.Second: 1})
}

func (s *Scheduler) logLongIteration(d time.Duration, t *Task) {
	if s.limiter != nil {
		if _, ok := s.limiter.Allow("long_iteration"); !ok {
			return
		}
	}
	if s.log == nil {
		return
	}
	s.log.Warning().Str("task", t.Name()).Dur("duration", d).Log("long_iteration: task exceeded max iteration time")
}

func (s *Scheduler) logFatal(err error, t *Task) {
	if s.log == nil {
		return
	}
	s.log.Err().Str("task", t.Name()).Err(err).Log("uncaught exception escaped task")
}

func (s *Scheduler) logArmFailure(err error, t *Task) {
	if s.log == nil {
		return
	}
	s.log.Err().Str("task", t.Name()).Err(err).Log("asynchronous call failed to arm")
}
