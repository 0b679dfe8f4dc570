package transport

import (
	"context"
	"sync"
)

// writeQueue is an unbounded FIFO of pending writes. push never blocks.
type writeQueue struct {
	mu     sync.Mutex
	items  []pendingWrite
	closed bool
	ready  chan struct{}
}

func newWriteQueue() *writeQueue {
	return &writeQueue{ready: make(chan struct{}, 1)}
}

// push appends w and reports false if the queue has been drained.
func (q *writeQueue) push(w pendingWrite) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}

	q.items = append(q.items, w)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}

	return true
}

// pop blocks until an item is available, the queue is drained, or ctx
// is done.
func (q *writeQueue) pop(ctx context.Context) (pendingWrite, bool) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			w := q.items[0]
			q.items[0] = pendingWrite{}
			q.items = q.items[1:]
			q.mu.Unlock()

			return w, true
		}

		if q.closed {
			q.mu.Unlock()
			return pendingWrite{}, false
		}
		q.mu.Unlock()

		select {
		case <-q.ready:
		case <-ctx.Done():
			return pendingWrite{}, false
		}
	}
}

// drain closes the queue and returns whatever was still pending.
func (q *writeQueue) drain() []pendingWrite {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	items := q.items
	q.items = nil

	return items
}
