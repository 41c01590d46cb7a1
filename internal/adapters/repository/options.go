// Package repository defines the session report store interface and errors.
package repository

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithInitialCapacity pre-sizes the row map for the expected batch size.
func WithInitialCapacity(n int) Option {
	return func(s *MemStore) {
		if n > 0 {
			s.initialCapacity = n
		}
	}
}
