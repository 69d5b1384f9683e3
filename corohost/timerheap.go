package corohost

import (
	"sync/atomic"
	"time"
)

// timerEntry is one pending one-shot timer. canceled is checked lazily, at
// the moment the timer would otherwise fire, rather than removed from the
// heap eagerly on cancellation.
type timerEntry struct {
	when     time.Time
	fn       func()
	canceled atomic.Bool
}

// timerHeap is a min-heap of pending timers, ordered by when. Implements
// heap.Interface.
type timerHeap []*timerEntry

func (h timerHeap) Len() int           { return len(h) }
func (h timerHeap) Less(i, j int) bool { return h[i].when.Before(h[j].when) }
func (h timerHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *timerHeap) Push(x any) {
	*h = append(*h, x.(*timerEntry))
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return x
}
