package taskqueue

import (
	"sync"
	"sync/atomic"
)

// Queue is an unbounded FIFO of items of type T.
type Queue[T any] struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	items    []T
	head     int
}

// New creates an empty Queue.
func New[T any]() *Queue[T] {
	q := &Queue[T]{}
	q.notEmpty = sync.NewCond(&q.mu)
	return q
}

// Push appends item to the tail and wakes one waiting consumer.
func (q *Queue[T]) Push(item T) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()

	q.notEmpty.Signal()
}

// TryPop removes and returns the head item without blocking.
// It returns false if the queue is empty.
func (q *Queue[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.lenLocked() == 0 {
		var zero T
		return zero, false
	}
	return q.popLocked(), true
}

// WaitAndPop blocks until the queue is non-empty or stop is set.
//
// Pending items take priority over stop: it returns (item, true) whenever an
// item is available, and (zero, false) only when stop is set and the queue
// is empty.
func (q *Queue[T]) WaitAndPop(stop *atomic.Bool) (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.lenLocked() == 0 && !stop.Load() {
		q.notEmpty.Wait()
	}

	if q.lenLocked() == 0 {
		var zero T
		return zero, false
	}
	return q.popLocked(), true
}

// WakeAll wakes every consumer blocked in WaitAndPop so it re-checks the
// queue and its stop flag.
func (q *Queue[T]) WakeAll() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.notEmpty.Broadcast()
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lenLocked()
}

// lenLocked returns the number of queued items (must hold lock).
func (q *Queue[T]) lenLocked() int {
	return len(q.items) - q.head
}

// popLocked removes the head item (must hold lock and queue must be non-empty).
func (q *Queue[T]) popLocked() T {
	var zero T
	item := q.items[q.head]
	q.items[q.head] = zero // Clear reference
	q.head++

	switch {
	case q.head == len(q.items):
		// Empty: reuse the backing array from the start.
		q.items = q.items[:0]
		q.head = 0
	case q.head > 64 && q.head*2 >= len(q.items):
		// Compact once the consumed prefix dominates the slice.
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
	return item
}
