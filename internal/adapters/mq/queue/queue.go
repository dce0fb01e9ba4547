// Package queue provides the bounded buffer between request handlers
// and the activity recorder.
//
// Handlers enqueue without blocking; when the buffer is full the entry
// is refused and the caller decides whether that is fatal. Recording is
// at-least-once, so a refused enqueue only costs a feed entry.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/metrics"
)

// Default queue configuration.
const (
	defaultCapacity = 10000
)

// Queue provides non-blocking enqueue and channel-based dequeue
// semantics for activity entries.
type Queue interface {
	// Enqueue adds an activity to the queue.
	// Returns false if the queue is full or closed and the entry was dropped.
	Enqueue(ctx context.Context, a model.Activity) bool

	// Dequeue returns a channel that receives activities as they become
	// available. The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan model.Activity

	// Len returns the current number of buffered activities.
	Len(ctx context.Context) int

	// Close shuts down the queue. After closing, no new activities can
	// be enqueued and the dequeue channel drains then closes.
	Close() error

	// IsClosed reports whether the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue with a buffered channel.
type InMemoryQueue struct {
	entries  chan model.Activity
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a queue with the configured capacity.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}

	q.entries = make(chan model.Activity, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0.0)

	return q
}

// Enqueue adds an activity to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, a model.Activity) bool {
	start := time.Now()
	defer func() {
		metrics.RecordQueueProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}

	select {
	case q.entries <- a:
		metrics.RecordQueueEnqueue()
		q.updateGauges()
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

// Dequeue returns a channel that receives activities as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan model.Activity {
	out := make(chan model.Activity)
	go func() {
		defer close(out)
		for a := range q.entries {
			select {
			case out <- a:
				metrics.RecordQueueDequeue()
				q.updateGauges()
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of buffered activities.
func (q *InMemoryQueue) Len(_ context.Context) int {
	q.updateGauges()
	return len(q.entries)
}

// Close shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	close(q.entries)
	q.closed = true

	return nil
}

// IsClosed reports whether the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

func (q *InMemoryQueue) updateGauges() {
	size := len(q.entries)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}
