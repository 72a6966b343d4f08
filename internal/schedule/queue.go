package schedule

import (
	"container/heap"
	"time"
)

type entry[T any] struct {
	at    time.Duration
	seq   uint64
	value T
}

type entryHeap[T any] []entry[T]

func (h entryHeap[T]) Len() int { return len(h) }

func (h entryHeap[T]) Less(i, j int) bool {
	if h[i].at != h[j].at {
		return h[i].at < h[j].at
	}
	// FIFO for equal times
	return h[i].seq < h[j].seq
}

func (h entryHeap[T]) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap[T]) Push(x any) { *h = append(*h, x.(entry[T])) }

func (h *entryHeap[T]) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// Queue holds values due at points of simulated time.
// It is not safe for concurrent use.
type Queue[T any] struct {
	h   entryHeap[T]
	seq uint64
}

// NewQueue creates an empty Queue.
func NewQueue[T any]() *Queue[T] {
	q := &Queue[T]{}
	heap.Init(&q.h)
	return q
}

// Push schedules v at simulated time at.
func (q *Queue[T]) Push(at time.Duration, v T) {
	q.seq++
	heap.Push(&q.h, entry[T]{at: at, seq: q.seq, value: v})
}

// PopDue removes and returns every value due at or before now, earliest first.
func (q *Queue[T]) PopDue(now time.Duration) []T {
	var out []T
	for q.h.Len() > 0 && q.h[0].at <= now {
		e := heap.Pop(&q.h).(entry[T])
		out = append(out, e.value)
	}
	return out
}

// Next returns the time of the earliest entry.
func (q *Queue[T]) Next() (time.Duration, bool) {
	if q.h.Len() == 0 {
		return 0, false
	}
	return q.h[0].at, true
}

// Len returns the number of pending entries.
func (q *Queue[T]) Len() int {
	return q.h.Len()
}

// Reset drops every pending entry.
func (q *Queue[T]) Reset() {
	q.h = q.h[:0]
}
