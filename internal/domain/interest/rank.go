// Package interest translates and ranks audience interest shares.
package interest

import (
	"sort"

	"github.com/okian/persona/internal/domain/model"
)

// DefaultLimit is how many interests survive the ranking.
const DefaultLimit = 5

// Translator maps platform interest names to display names.
type Translator interface {
	// Translate returns the display name for an interest, or the input
	// unchanged when no translation exists.
	Translate(name string) string
}

// MapTranslator implements Translator over a fixed lookup table.
type MapTranslator map[string]string

// Translate returns the mapped name, or name itself when absent.
func (m MapTranslator) Translate(name string) string {
	if t, ok := m[name]; ok {
		return t
	}
	return name
}

// Rank translates each interest, converts its weight to a percentage and
// keeps the limit highest-weight entries in descending order. Equal weights
// keep their input order. The caller applies locale formatting; percentages
// stay raw float64.
func Rank(interests []model.Interest, tr Translator, limit int) []model.RankedInterest {
	if len(interests) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if tr == nil {
		tr = MapTranslator(nil)
	}

	ranked := make([]model.RankedInterest, len(interests))
	for i, in := range interests {
		ranked[i] = model.RankedInterest{
			Name:       tr.Translate(in.Name),
			Percentage: in.Weight * 100,
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Percentage > ranked[j].Percentage
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
