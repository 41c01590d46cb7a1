package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/okian/persona/internal/domain/model"
	"github.com/okian/persona/pkg/metrics"
)

// defaultInitialCapacity pre-sizes the row map for typical batch sizes.
const defaultInitialCapacity = 64

// MemStore implements Store with an in-memory map guarded by a RWMutex.
// Reads and writes from concurrent workers are safe; the map itself is never
// handed out, Rows returns copies.
type MemStore struct {
	mu   sync.RWMutex
	rows map[string]model.SummaryRow

	initialCapacity int
}

// NewMemStore creates an empty session store with configuration options.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{
		initialCapacity: defaultInitialCapacity,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.rows = make(map[string]model.SummaryRow, s.initialCapacity)
	return s
}

// Put inserts or replaces the row keyed by its profile id.
func (s *MemStore) Put(ctx context.Context, row model.SummaryRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows[row.ProfileID] = row
	metrics.UpdateStoreRows(len(s.rows))
	return nil
}

// Get returns the row for a profile id, or ErrNotFound.
func (s *MemStore) Get(ctx context.Context, profileID string) (model.SummaryRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.rows[profileID]
	if !ok {
		return model.SummaryRow{}, ErrNotFound
	}
	return row, nil
}

// Rows returns a snapshot of all rows ordered by profile id.
func (s *MemStore) Rows(ctx context.Context) []model.SummaryRow {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.SummaryRow, 0, len(s.rows))
	for _, row := range s.rows {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ProfileID < out[j].ProfileID
	})
	metrics.RecordStoreSnapshot()
	return out
}

// ReplaceAll swaps the whole result set for a new batch's rows.
func (s *MemStore) ReplaceAll(ctx context.Context, rows []model.SummaryRow) {
	fresh := make(map[string]model.SummaryRow, len(rows))
	for _, row := range rows {
		fresh[row.ProfileID] = row
	}

	s.mu.Lock()
	s.rows = fresh
	s.mu.Unlock()

	metrics.UpdateStoreRows(len(fresh))
}

// Count returns the number of stored rows.
func (s *MemStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}
