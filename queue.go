package stage

import "sync"

// messageQueue carries closures from the event side to the update side. Two
// slices alternate so that steady-state ticks do not allocate.
type messageQueue struct {
	mu    sync.Mutex
	items []func()
	spare []func()
}

func (q *messageQueue) push(fn func()) {
	q.mu.Lock()
	q.items = append(q.items, fn)
	q.mu.Unlock()
}

// drain returns every queued message in posting order.
func (q *messageQueue) drain() []func() {
	q.mu.Lock()
	items := q.items
	q.items = q.spare[:0]
	q.spare = nil
	q.mu.Unlock()
	return items
}

// recycle hands a drained slice back for reuse.
func (q *messageQueue) recycle(items []func()) {
	clear(items)
	q.mu.Lock()
	if q.spare == nil {
		q.spare = items[:0]
	}
	q.mu.Unlock()
}

// len returns the number of queued messages.
func (q *messageQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
