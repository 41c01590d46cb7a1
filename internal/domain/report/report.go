// Package report consolidates derivation branch outputs into the final
// per-influencer summary table.
package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/okian/persona/internal/domain/model"
)

// NotAvailable marks a branch that produced no result for an influencer.
// Unavailable cells are always explicit, never blank or zero.
const NotAvailable = "n/a"

// Branches bundles the independent derivation outputs for one influencer.
// Zero-value fields with a false OK flag mean the branch was unavailable.
type Branches struct {
	ClassMix   model.ClassMix
	ClassMixOK bool

	Education   model.EducationEstimate
	EducationOK bool

	Dispersion   int
	DispersionOK bool

	Interests []model.RankedInterest

	TopCities []model.NormalizedCity

	Live   model.LiveMetrics
	LiveOK bool
}

// Consolidate merges the branch outputs and headline profile stats into one
// SummaryRow. It is a pure merge: a missing branch never fails the row, it
// just stays marked unavailable.
func Consolidate(rec *model.InfluencerRecord, b Branches) model.SummaryRow {
	return model.SummaryRow{
		ProfileID:      rec.ProfileID,
		DisplayName:    rec.DisplayName,
		Followers:      rec.Stats.Followers,
		AvgLikes:       rec.Stats.AvgLikes,
		AvgComments:    rec.Stats.AvgComments,
		AvgReelsPlays:  rec.Stats.AvgReelsPlays,
		EngagementRate: rec.Stats.EngagementRate,
		ClassMix:       b.ClassMix,
		ClassMixOK:     b.ClassMixOK,
		Education:      b.Education,
		EducationOK:    b.EducationOK,
		Dispersion:     b.Dispersion,
		DispersionOK:   b.DispersionOK,
		Interests:      b.Interests,
		TopCities:      b.TopCities,
		Live:           b.Live,
		LiveOK:         b.LiveOK,
	}
}

// Report is one batch run's result set, replaced wholesale on the next run.
type Report struct {
	Rows []model.SummaryRow
}

// New builds a Report with rows ordered by profile id, so repeated runs over
// the same input produce byte-identical output.
func New(rows []model.SummaryRow) *Report {
	sorted := make([]model.SummaryRow, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ProfileID < sorted[j].ProfileID
	})
	return &Report{Rows: sorted}
}

// Header is the column layout of the summary table.
func Header() []string {
	return []string{
		"profile_id",
		"display_name",
		"followers",
		"avg_likes",
		"avg_comments",
		"avg_reels_plays",
		"engagement_rate",
		"class_d_e",
		"class_c",
		"class_b",
		"class_a",
		"edu_mean_years",
		"edu_under_5",
		"edu_5_9",
		"edu_9_12",
		"edu_over_12",
		"dispersion",
		"interests",
		"top_cities",
	}
}

// Table projects the report into header-plus-rows string cells for export.
// Numeric cells use a raw '.' decimal separator; locale rendering belongs to
// the presentation layer.
func (r *Report) Table() [][]string {
	out := make([][]string, 0, len(r.Rows)+1)
	out = append(out, Header())
	for i := range r.Rows {
		out = append(out, rowCells(&r.Rows[i]))
	}
	return out
}

func rowCells(row *model.SummaryRow) []string {
	cells := []string{
		row.ProfileID,
		row.DisplayName,
		strconv.FormatInt(row.Followers, 10),
		formatFloat(row.AvgLikes),
		formatFloat(row.AvgComments),
		formatFloat(row.AvgReelsPlays),
		formatFloat(row.EngagementRate),
	}

	if row.ClassMixOK {
		cells = append(cells,
			formatFloat(row.ClassMix.DE),
			formatFloat(row.ClassMix.C),
			formatFloat(row.ClassMix.B),
			formatFloat(row.ClassMix.A),
		)
	} else {
		cells = append(cells, NotAvailable, NotAvailable, NotAvailable, NotAvailable)
	}

	if row.EducationOK {
		cells = append(cells,
			formatFloat(row.Education.MeanYears),
			formatPct(row.Education.Under5),
			formatPct(row.Education.Mid5to9),
			formatPct(row.Education.Mid9to12),
			formatPct(row.Education.Over12),
		)
	} else {
		cells = append(cells, NotAvailable, NotAvailable, NotAvailable, NotAvailable, NotAvailable)
	}

	if row.DispersionOK {
		cells = append(cells, strconv.Itoa(row.Dispersion))
	} else {
		cells = append(cells, NotAvailable)
	}

	cells = append(cells, formatInterests(row.Interests), formatCities(row.TopCities))
	return cells
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// formatPct renders a probability as a percentage with 2 decimals.
func formatPct(p float64) string {
	return strconv.FormatFloat(p*100, 'f', 2, 64)
}

func formatInterests(interests []model.RankedInterest) string {
	if len(interests) == 0 {
		return NotAvailable
	}
	parts := make([]string, len(interests))
	for i, in := range interests {
		parts[i] = fmt.Sprintf("%s: %s%%", in.Name, formatFloat(in.Percentage))
	}
	return strings.Join(parts, "; ")
}

func formatCities(cities []model.NormalizedCity) string {
	if len(cities) == 0 {
		return NotAvailable
	}
	parts := make([]string, len(cities))
	for i, c := range cities {
		parts[i] = fmt.Sprintf("%s: %s%%", c.Name, formatPct(c.Weight))
	}
	return strings.Join(parts, "; ")
}
