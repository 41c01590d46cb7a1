// Package dedupe tracks profile ids already admitted into a batch, so a
// document uploaded twice is processed at most once per run.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// defaultMaxSize bounds the seen-set; batches are bounded by upload size.
const defaultMaxSize = 10_000

// Deduper records seen profile ids for at-most-once processing within a run.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes an id from the seen set, allowing a retry after a
	// document was admitted but failed before producing a row.
	Unrecord(ctx context.Context, id string)

	// Reset clears the seen set at the start of a new batch run.
	Reset(ctx context.Context)

	Size() int64
}

// inMemoryDeduper implements Deduper with a bounded map. When the bound is
// reached, new ids are still admitted as unseen; a batch larger than the
// bound trades duplicate detection for not blocking the run.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper with options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]struct{})
	return d
}

// SeenAndRecord atomically checks if id was seen and records it if not.
func (d *inMemoryDeduper) SeenAndRecord(ctx context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}
	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		return false
	}
	d.seen[id] = struct{}{}
	d.size.Add(1)
	return false
}

// Unrecord removes an id from the seen set.
func (d *inMemoryDeduper) Unrecord(ctx context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		delete(d.seen, id)
		d.size.Add(-1)
	}
}

// Reset clears the seen set for a fresh batch run.
func (d *inMemoryDeduper) Reset(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seen = make(map[string]struct{})
	d.size.Store(0)
}

// Size returns the current number of recorded ids.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
