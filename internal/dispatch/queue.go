package dispatch

import (
	"sync"
)

// growPercent is the fill level at which the ring doubles.
const growPercent = 70

// Queue is an unbounded FIFO safe for any number of concurrent producers and
// one or more consumers. Push never blocks: the backing ring doubles once it
// is growPercent full.
type Queue[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	ring   []T
	head   int // oldest item
	size   int
	closed bool

	// Stats
	pushed    int64
	popped    int64
	resizes   int
	highWater int
}

// NewQueue creates a queue with the given initial capacity.
func NewQueue[T any](initialCapacity int) *Queue[T] {
	if initialCapacity < 1 {
		initialCapacity = 1
	}
	q := &Queue[T]{ring: make([]T, initialCapacity)}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends an item. Returns false if the queue is closed.
func (q *Queue[T]) Push(item T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	if q.size+1 >= max(len(q.ring)*growPercent/100, 1) {
		q.resize(len(q.ring) * 2)
	}

	q.ring[(q.head+q.size)%len(q.ring)] = item
	q.size++
	q.pushed++
	q.highWater = max(q.highWater, q.size)

	q.cond.Signal()
	return true
}

// Pop removes and returns the oldest item, blocking while the queue is empty.
// After Close it keeps returning queued items, then the zero value and false.
func (q *Queue[T]) Pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.size == 0 && !q.closed {
		q.cond.Wait()
	}
	return q.shift()
}

// TryPop is Pop without blocking.
func (q *Queue[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.shift()
}

// Close stops the queue from accepting items and wakes blocked Pop callers.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.cond.Broadcast()
}

// Closed reports whether Close has been called.
func (q *Queue[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Len returns the current number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Cap returns the current capacity of the ring.
func (q *Queue[T]) Cap() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ring)
}

// Stats returns queue statistics.
func (q *Queue[T]) Stats() QueueStats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return QueueStats{
		Count:       q.size,
		Capacity:    len(q.ring),
		HighWater:   q.highWater,
		TotalPushed: q.pushed,
		TotalPopped: q.popped,
		ResizeCount: q.resizes,
	}
}

// QueueStats contains queue statistics.
type QueueStats struct {
	Count       int
	Capacity    int
	HighWater   int // deepest the queue has been
	TotalPushed int64
	TotalPopped int64
	ResizeCount int
}

// shift removes the head item. Must be called with lock held.
func (q *Queue[T]) shift() (T, bool) {
	var zero T
	if q.size == 0 {
		return zero, false
	}

	item := q.ring[q.head]
	q.ring[q.head] = zero
	q.head = (q.head + 1) % len(q.ring)
	q.size--
	q.popped++
	return item, true
}

// resize moves the queued items to the front of a new ring of n slots.
// Must be called with lock held and n >= size.
func (q *Queue[T]) resize(n int) {
	ring := make([]T, n)
	for i := 0; i < q.size; i++ {
		ring[i] = q.ring[(q.head+i)%len(q.ring)]
	}

	q.ring = ring
	q.head = 0
	q.resizes++
}
