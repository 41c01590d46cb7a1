// Package worker drains the document queue and runs the per-influencer
// derivation pipeline. Workers are independent; one failing document never
// touches a sibling's computation.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/okian/persona/internal/domain/model"
	"github.com/okian/persona/pkg/logger"
	"github.com/okian/persona/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	workerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Document is what workers read off the queue.
type Document = model.Document

// Deriver turns one raw document into a consolidated summary row.
type Deriver interface {
	Derive(ctx context.Context, doc Document) (model.SummaryRow, error)
}

// Sink receives finished rows together with the document they came from, so
// it can refuse rows whose batch has been superseded.
type Sink interface {
	Put(ctx context.Context, doc Document, row model.SummaryRow) error
}

// Queue defines how workers receive documents.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Document
}

// Worker processes documents until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// PipelineWorker implements Worker for processing documents.
type PipelineWorker struct {
	queue   Queue
	deriver Deriver
	sink    Sink
	name    string

	// onDone runs after every document, success or not; used by the batch
	// tracker to join on completion.
	onDone func(doc Document, err error)

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewPipelineWorker creates a new worker with configuration options.
func NewPipelineWorker(queue Queue, deriver Deriver, sink Sink, opts ...Option) *PipelineWorker {
	w := &PipelineWorker{
		queue:    queue,
		deriver:  deriver,
		sink:     sink,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *PipelineWorker) Run(ctx context.Context) {
	defer close(w.done)

	docChan := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case doc, ok := <-docChan:
			if !ok {
				return
			}
			err := w.processDocument(ctx, doc)
			if err != nil {
				w.logger.Error(ctx, "error processing document", logger.Error(err))
			}
			if w.onDone != nil {
				w.onDone(doc, err)
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *PipelineWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processDocument runs one document through derivation and storage.
func (w *PipelineWorker) processDocument(ctx context.Context, doc Document) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	row, err := w.deriver.Derive(ctx, doc)
	if err != nil {
		// Isolated failure: the document is excluded, the batch goes on.
		metrics.RecordWorkerError()
		w.logger.Error(ctx, "derivation failed for document",
			logger.String("source", doc.SourceName),
			logger.Error(err),
		)
		return fmt.Errorf("derive %s: %w", doc.SourceName, err)
	}

	if err := w.sink.Put(ctx, doc, row); err != nil {
		metrics.RecordWorkerError()
		w.logger.Error(ctx, "storing summary row failed",
			logger.String("profile_id", row.ProfileID),
			logger.Error(err),
		)
		return fmt.Errorf("store row %s: %w", row.ProfileID, err)
	}

	metrics.RecordReportBuilt()
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers []*PipelineWorker

	shutdown chan struct{}

	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, queue Queue, deriver Deriver, sink Sink, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers:  make([]*PipelineWorker, workerCount),
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		workerOpts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		pool.workers[i] = NewPipelineWorker(queue, deriver, sink, workerOpts...)
	}

	metrics.UpdateWorkerCount(workerCount)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}
}

// Stop stops all workers, waiting a bounded time for each.
func (p *Pool) Stop() {
	close(p.shutdown)

	for _, worker := range p.workers {
		select {
		case <-worker.shutdown:
		default:
			close(worker.shutdown)
		}
		select {
		case <-worker.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
}

// Shutdown gracefully shuts down the entire worker pool.
func (p *Pool) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, worker := range p.workers {
		select {
		case <-worker.shutdown:
		default:
			close(worker.shutdown)
		}
		select {
		case <-worker.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	return nil
}
