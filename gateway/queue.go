package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/nocodenation/appgateway/errors"
)

// requestQueue is a bounded FIFO buffer for captured requests. Enqueue never
// blocks; dequeue blocks up to a timeout and honors context cancellation.
// Safe for concurrent producers and consumers.
type requestQueue struct {
	ch        chan *Request
	done      chan struct{}
	closeOnce sync.Once
}

func newRequestQueue(capacity int) *requestQueue {
	if capacity <= 0 {
		capacity = DefaultMaxQueueSize
	}
	return &requestQueue{
		ch:   make(chan *Request, capacity),
		done: make(chan struct{}),
	}
}

// TryEnqueue appends a request without blocking. Returns ErrQueueFull when
// the queue is at capacity and ErrQueueClosed after Close.
func (q *requestQueue) TryEnqueue(req *Request) error {
	select {
	case <-q.done:
		return errors.ErrQueueClosed
	default:
	}

	select {
	case q.ch <- req:
		return nil
	default:
		return errors.ErrQueueFull
	}
}

// Dequeue removes the oldest request, waiting up to timeout for one to
// arrive. Returns ErrNoRequest when the wait expires, the context error on
// cancellation, and ErrQueueClosed once the queue is closed and drained.
func (q *requestQueue) Dequeue(ctx context.Context, timeout time.Duration) (*Request, error) {
	// Fast path: a request is already buffered.
	select {
	case req := <-q.ch:
		return req, nil
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case req := <-q.ch:
		return req, nil
	case <-timer.C:
		return nil, errors.ErrNoRequest
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-q.done:
		// Closed while waiting; hand out anything already buffered.
		select {
		case req := <-q.ch:
			return req, nil
		default:
			return nil, errors.ErrQueueClosed
		}
	}
}

// Size returns the number of buffered requests.
func (q *requestQueue) Size() int {
	return len(q.ch)
}

// Capacity returns the maximum number of buffered requests.
func (q *requestQueue) Capacity() int {
	return cap(q.ch)
}

// Close stops the queue. Pending Dequeue calls return ErrQueueClosed.
func (q *requestQueue) Close() {
	q.closeOnce.Do(func() {
		close(q.done)
	})
}

// Drain discards buffered requests and returns how many were dropped.
func (q *requestQueue) Drain() int {
	dropped := 0
	for {
		select {
		case <-q.ch:
			dropped++
		default:
			return dropped
		}
	}
}
