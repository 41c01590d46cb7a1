// Package queue defines the contract for enqueuing and consuming raw
// documents awaiting processing.
package queue

import (
	"context"
	"sync"

	"github.com/okian/persona/internal/domain/model"
	"github.com/okian/persona/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 1024
	defaultBufferSize    = 1024
)

// Document is the payload type flowing through the queue.
type Document = model.Document

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a document to the queue.
	// Returns false if the queue is full and the document was not enqueued.
	Enqueue(ctx context.Context, d Document) bool

	// Dequeue returns a channel that receives documents as they become
	// available. The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Document

	// Len returns the current number of queued documents.
	Len(ctx context.Context) int

	// Close gracefully shuts down the queue. After closing, no new
	// documents can be enqueued and the dequeue channel is closed.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	docs       chan Document
	capacity   int
	bufferSize int
	mu         sync.RWMutex
	closed     bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity:   defaultQueueCapacity,
		bufferSize: defaultBufferSize,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.docs = make(chan Document, q.bufferSize)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0.0)

	return q
}

// Enqueue adds a document to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, d Document) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		return false
	}

	if len(q.docs) >= q.capacity {
		metrics.RecordQueueEnqueueError()
		return false
	}

	select {
	case q.docs <- d:
		metrics.RecordQueueEnqueue()
		q.updateGauges()
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		return false
	default:
		metrics.RecordQueueEnqueueError()
		return false // queue is full
	}
}

// Dequeue returns a channel that receives documents as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Document {
	out := make(chan Document)
	go func() {
		defer close(out)
		for doc := range q.docs {
			select {
			case out <- doc:
				metrics.RecordQueueDequeue()
				q.updateGauges()
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued documents.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	q.updateGauges()
	return len(q.docs)
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	close(q.docs)
	q.closed = true

	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

func (q *InMemoryQueue) updateGauges() {
	size := len(q.docs)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}
