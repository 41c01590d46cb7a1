// Package dedupe tracks profile ids already admitted into a batch.
package dedupe

// Option applies a configuration option to the inMemoryDeduper.
type Option func(*inMemoryDeduper)

// WithMaxSize sets the maximum number of ids to keep in memory.
// maxSize <= 0 means unbounded.
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = maxSize
	}
}
