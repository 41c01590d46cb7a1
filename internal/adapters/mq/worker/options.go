// Package worker drains the document queue and runs the per-influencer
// derivation pipeline.
package worker

import (
	"github.com/okian/persona/pkg/logger"
)

// Option applies a configuration option to the PipelineWorker.
type Option func(*PipelineWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *PipelineWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(w *PipelineWorker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithOnDone registers a hook that runs after every processed document,
// success or failure. The batch tracker uses it to join on completion.
func WithOnDone(fn func(doc Document, err error)) Option {
	return func(w *PipelineWorker) {
		if fn != nil {
			w.onDone = fn
		}
	}
}
