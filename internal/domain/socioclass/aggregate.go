// Package socioclass maps audience geography onto a socioeconomic class mix.
package socioclass

import (
	"github.com/okian/persona/internal/domain/model"
	"github.com/okian/persona/pkg/metrics"
)

// Shares holds the four class-band shares for one city, on the scale used by
// the reference table (~percent, externally curated, not enforced to 100).
type Shares struct {
	DE float64
	C  float64
	B  float64
	A  float64
}

// Table maps city name to class shares. Loaded once, read-only afterwards,
// safe for unsynchronized concurrent reads.
type Table map[string]Shares

// Aggregator computes a weighted class mix from normalized city shares.
type Aggregator struct {
	table Table
}

// NewAggregator creates an Aggregator over a loaded class table.
func NewAggregator(table Table) *Aggregator {
	return &Aggregator{table: table}
}

// Aggregate inner-joins the normalized cities against the class table by
// exact city name and sums weight-scaled shares. Unmatched cities are dropped
// and their mass is lost, not redistributed; the result is NOT re-normalized
// after the join, so total mass can be below 100 when coverage is incomplete.
// Returns ok=false when no city matched or the table is empty.
func (a *Aggregator) Aggregate(cities []model.NormalizedCity) (model.ClassMix, bool) {
	var mix model.ClassMix
	matched := false
	for _, c := range cities {
		shares, ok := a.table[c.Name]
		if !ok {
			metrics.RecordJoinMiss("class_mix")
			continue
		}
		matched = true
		mix.DE += c.Weight * shares.DE
		mix.C += c.Weight * shares.C
		mix.B += c.Weight * shares.B
		mix.A += c.Weight * shares.A
	}
	return mix, matched
}
