package corohost

import (
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Option configures a Loop constructed via New.
type Option interface {
	applyLoop(*Loop)
}

type optionFunc func(*Loop)

func (f optionFunc) applyLoop(l *Loop) { f(l) }

// WithLogger supplies the structured logger used to report panics recovered
// from posted functions, timers, and the tick handler. If omitted, a stumpy
// logger writing to stderr is used, matching corosched.Scheduler's default.
func WithLogger(log *logiface.Logger[*stumpy.Event]) Option {
	return optionFunc(func(l *Loop) { l.log = log })
}

func defaultLoopLogger() *logiface.Logger[*stumpy.Event] {
	return stumpy.L.New(stumpy.L.WithStumpy())
}
