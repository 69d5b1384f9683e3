package corohost

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoop_TickHandlerRunsWhileArmed(t *testing.T) {
	l := New()

	var calls int
	var mu sync.Mutex
	l.SetTickHandler(func() {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n >= 3 {
			l.DisarmTick()
		}
	})
	l.ArmTick()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	// Once DisarmTick is called, Run falls back to blocking on wake/timeout;
	// cancel explicitly so the test doesn't wait out the full timeout.
	time.Sleep(50 * time.Millisecond)
	cancel()

	err := <-done
	require.ErrorIs(t, err, context.Canceled)

	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, calls, 3)
}

func TestLoop_StartTimerFires(t *testing.T) {
	l := New()
	l.SetTickHandler(func() {})

	fired := make(chan struct{}, 1)
	l.StartTimer(10*time.Millisecond, func() {
		fired <- struct{}{}
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	go l.Run(ctx)

	select {
	case <-fired:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timer never fired")
	}
	cancel()
}

func TestLoop_CancelledTimerDoesNotFire(t *testing.T) {
	l := New()
	l.SetTickHandler(func() {})

	fired := make(chan struct{}, 1)
	cancelTimer := l.StartTimer(20*time.Millisecond, func() {
		fired <- struct{}{}
	})
	cancelTimer()

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	_ = l.Run(ctx)

	select {
	case <-fired:
		t.Fatal("cancelled timer fired")
	default:
	}
}

func TestLoop_PostMarshalsOntoLoopGoroutine(t *testing.T) {
	l := New()
	l.SetTickHandler(func() {})

	result := make(chan int, 1)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	go l.Run(ctx)

	l.Post(func() { result <- 42 })

	select {
	case v := <-result:
		assert.Equal(t, 42, v)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("posted function never ran")
	}
	cancel()
}
