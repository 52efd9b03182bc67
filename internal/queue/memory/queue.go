// Package memory provides the in-process job queue feeding the worker.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/JakeFAU/contact-finder/internal/contact"
)

// Queue holds submitted jobs in arrival order. Capacity bounds how many
// uploads may wait behind the running job.
type Queue struct {
	mu     sync.RWMutex
	items  chan contact.QueueItem
	closed bool
}

// NewQueue returns a queue holding at most capacity waiting jobs.
func NewQueue(capacity int) *Queue {
	return &Queue{items: make(chan contact.QueueItem, capacity)}
}

// Enqueue adds item, blocking while the queue is full. It fails with
// contact.ErrQueueClosed after Close.
func (q *Queue) Enqueue(ctx context.Context, item contact.QueueItem) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return fmt.Errorf("enqueue %s: %w", item.JobID, contact.ErrQueueClosed)
	}
	select {
	case q.items <- item:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("enqueue canceled: %w", ctx.Err())
	}
}

// Dequeue waits for the next job. Once closed and drained it returns
// contact.ErrQueueClosed.
func (q *Queue) Dequeue(ctx context.Context) (contact.QueueItem, error) {
	select {
	case item, ok := <-q.items:
		if !ok {
			return contact.QueueItem{}, contact.ErrQueueClosed
		}
		return item, nil
	case <-ctx.Done():
		return contact.QueueItem{}, fmt.Errorf("dequeue canceled: %w", ctx.Err())
	}
}

// Len reports how many jobs are waiting.
func (q *Queue) Len() int {
	return len(q.items)
}

// Close stops accepting jobs. Jobs already queued can still be dequeued.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.items)
}
