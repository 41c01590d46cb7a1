// Package repository defines the session report store interface and errors.
package repository

import (
	"context"

	"github.com/okian/persona/internal/domain/model"
)

// Store holds the summary rows of the current session. Rows live only as
// long as the process; a new batch run replaces them wholesale.
type Store interface {
	// Put inserts or replaces the row for its profile id.
	Put(ctx context.Context, row model.SummaryRow) error

	// Get returns the row for a profile id.
	// Returns ErrNotFound when the profile is unknown.
	Get(ctx context.Context, profileID string) (model.SummaryRow, error)

	// Rows returns a snapshot of all rows ordered by profile id.
	Rows(ctx context.Context) []model.SummaryRow

	// ReplaceAll swaps the whole result set for a new batch's rows.
	ReplaceAll(ctx context.Context, rows []model.SummaryRow)

	// Count returns the number of stored rows.
	Count(ctx context.Context) int
}
