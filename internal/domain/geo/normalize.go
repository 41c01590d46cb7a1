// Package geo rescales raw audience city weights into per-influencer shares.
package geo

import (
	"sort"

	"github.com/okian/persona/internal/domain/model"
)

// Option applies a configuration option to the Normalizer.
type Option func(*Normalizer)

// WithCountryFilter keeps only cities with the given country code. The filter
// runs before the weight sum is taken, so the remaining cities are normalized
// over the filtered list only.
func WithCountryFilter(code string) Option {
	return func(n *Normalizer) {
		n.countryFilter = code
	}
}

// Normalizer rescales one influencer's raw city weights to sum to 1.
type Normalizer struct {
	countryFilter string // empty means no filtering
}

// NewNormalizer creates a Normalizer with configuration options.
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize returns the influencer's cities with weights rescaled to sum to 1
// over its own list only. A zero total or an empty list yields an empty
// result, so downstream joins report "insufficient data" instead of dividing
// by zero.
func (n *Normalizer) Normalize(cities []model.CityWeight) []model.NormalizedCity {
	filtered := cities
	if n.countryFilter != "" {
		filtered = make([]model.CityWeight, 0, len(cities))
		for _, c := range cities {
			if c.CountryCode == n.countryFilter {
				filtered = append(filtered, c)
			}
		}
	}

	var total float64
	for _, c := range filtered {
		total += c.Weight
	}
	if total <= 0 {
		return nil
	}

	out := make([]model.NormalizedCity, len(filtered))
	for i, c := range filtered {
		out[i] = model.NormalizedCity{Name: c.Name, Weight: c.Weight / total}
	}
	return out
}

// TopN returns the n highest-weight cities in descending order. Equal weights
// keep their input order.
func TopN(cities []model.NormalizedCity, n int) []model.NormalizedCity {
	if n <= 0 || len(cities) == 0 {
		return nil
	}
	out := make([]model.NormalizedCity, len(cities))
	copy(out, cities)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Weight > out[j].Weight
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
