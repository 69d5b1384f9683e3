package corosched

import (
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Tunable scheduler constants.
const (
	// DefaultMaxTaskIterations bounds the number of micro-steps a single
	// Task.step call may perform before ceding to the scheduler.
	DefaultMaxTaskIterations = 3
	// DefaultMaxSchedulerIterations bounds the number of Tasks serviced in
	// a single batch (one host tick).
	DefaultMaxSchedulerIterations = 10
	// DefaultMaxIterationTime is the per-Task wall-clock budget within a
	// batch; exceeding it triggers a long_iteration diagnostic and ends the
	// batch early.
	DefaultMaxIterationTime = 300 * time.Millisecond
	// DefaultAverageSchedulerTime is the whole-batch wall-clock budget;
	// exceeding it ends the batch early, deferring remaining ready Tasks to
	// the next tick.
	DefaultAverageSchedulerTime = 30 * time.Millisecond
)

type schedulerOptions struct {
	printUncaught          bool
	maxTaskIterations      int
	maxSchedulerIterations int
	maxIterationTime       time.Duration
	averageSchedulerTime   time.Duration
	logger                 *logiface.Logger[*stumpy.Event]
	limiter                *catrate.Limiter
	limiterSet             bool
}

// Option configures a Scheduler constructed via NewScheduler.
type Option interface {
	applyScheduler(*schedulerOptions) error
}

type optionImpl struct {
	applyFunc func(*schedulerOptions) error
}

func (o *optionImpl) applyScheduler(opts *schedulerOptions) error {
	return o.applyFunc(opts)
}

// WithPrintUncaught controls whether exceptions that escape a Task's
// top-level coroutine are logged. Enabled by default.
func WithPrintUncaught(enabled bool) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		opts.printUncaught = enabled
		return nil
	}}
}

// WithMaxTaskIterations overrides DefaultMaxTaskIterations.
func WithMaxTaskIterations(n int) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		opts.maxTaskIterations = n
		return nil
	}}
}

// WithMaxSchedulerIterations overrides DefaultMaxSchedulerIterations.
func WithMaxSchedulerIterations(n int) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		opts.maxSchedulerIterations = n
		return nil
	}}
}

// WithMaxIterationTime overrides DefaultMaxIterationTime.
func WithMaxIterationTime(d time.Duration) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		opts.maxIterationTime = d
		return nil
	}}
}

// WithAverageSchedulerTime overrides DefaultAverageSchedulerTime.
func WithAverageSchedulerTime(d time.Duration) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		opts.averageSchedulerTime = d
		return nil
	}}
}

// WithLogger supplies a structured logger for scheduler diagnostics
// (uncaught exceptions, long_iteration warnings). If omitted, a stumpy
// logger writing to stderr is used.
func WithLogger(l *logiface.Logger[*stumpy.Event]) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		opts.logger = l
		return nil
	}}
}

// WithRateLimiter supplies the rate limiter used to throttle repeated
// long_iteration diagnostics, so that a pathological coroutine cannot flood
// the log. A nil limiter disables throttling. If omitted, a default limiter
// of 1 event/second per category is used.
func WithRateLimiter(l *catrate.Limiter) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		opts.limiter = l
		opts.limiterSet = true
		return nil
	}}
}

func resolveOptions(opts []Option) (*schedulerOptions, error) {
	cfg := &schedulerOptions{
		printUncaught:          true,
		maxTaskIterations:      DefaultMaxTaskIterations,
		maxSchedulerIterations: DefaultMaxSchedulerIterations,
		maxIterationTime:       DefaultMaxIterationTime,
		averageSchedulerTime:   DefaultAverageSchedulerTime,
	}
	for _, o := range opts {
		if o == nil {
			continue
		}
		if err := o.applyScheduler(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
