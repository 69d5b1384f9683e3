// Command corosched-demo wires a corohost.Loop to a corosched.Scheduler and
// runs a handful of coroutines: two workers that sleep and tick a counter,
// gathered with corosched.All, plus one that deliberately raises, to show
// the virtual backtrace an uncaught exception carries.
package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/joeycumines/go-corosched"
	"github.com/joeycumines/go-corosched/corohost"
)

func worker(name string, ticks int, delay time.Duration) corosched.Coroutine {
	n := 0
	return corosched.FuncCoroutine(func(sent any, thrown error) (any, error) {
		if thrown != nil {
			return nil, thrown
		}
		if n >= ticks {
			return corosched.Return(name, n), nil
		}
		n++
		fmt.Printf("%s: tick %d\n", name, n)
		return corosched.Sleep(delay), nil
	})
}

// boom is a coroutine that always raises, to demonstrate the virtual
// backtrace a CoException accumulates as it unwinds.
func boom() corosched.Coroutine {
	return corosched.FuncCoroutine(func(sent any, thrown error) (any, error) {
		return nil, errors.New("boom: deliberate failure")
	})
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	host := corohost.New()
	sched, err := corosched.NewScheduler(host)
	if err != nil {
		panic(err)
	}

	sched.OnFatalError(func(err error, t *corosched.Task) {
		fmt.Printf("task %q failed: %v\n", t.Name(), err)
	})

	gathered := sched.NewTask(corosched.All(
		worker("alpha", 3, 50*time.Millisecond),
		worker("beta", 2, 75*time.Millisecond),
	))
	gathered.OnDone(func(ret *corosched.ReturnEnvelope) {
		fmt.Printf("gather finished: %v\n", ret.Values())
	})

	sched.NewTask(boom())

	sched.OnDone(func() {
		fmt.Println("all tasks finished")
		stop()
	})

	if err := host.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		panic(err)
	}
}
