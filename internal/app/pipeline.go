package service

import (
	"context"
	"errors"

	"github.com/okian/persona/internal/adapters/enrich"
	"github.com/okian/persona/internal/domain/education"
	"github.com/okian/persona/internal/domain/engagement"
	"github.com/okian/persona/internal/domain/geo"
	"github.com/okian/persona/internal/domain/interest"
	"github.com/okian/persona/internal/domain/model"
	"github.com/okian/persona/internal/domain/parse"
	"github.com/okian/persona/internal/domain/report"
	"github.com/okian/persona/internal/domain/socioclass"
	"github.com/okian/persona/pkg/metrics"
)

// pipeline runs the five derivation branches for one document and
// consolidates them into a summary row. Branches are independent: each one
// that cannot be computed leaves its slot marked unavailable and the rest
// proceed. A nil aggregator or estimator means the corresponding reference
// table failed to load and that branch is disabled for the whole batch.
type pipeline struct {
	parser     *parse.Parser
	normalizer *geo.Normalizer
	classAgg   *socioclass.Aggregator
	eduEst     *education.Estimator
	translator interest.Translator
	fetcher    enrich.Fetcher

	topInterests   int
	topCities      int
	postSampleSize int
}

// Derive parses the raw document and merges all branch outputs. Only a
// malformed payload returns an error; everything else degrades per branch.
func (p *pipeline) Derive(ctx context.Context, doc model.Document) (model.SummaryRow, error) {
	rec, err := p.parser.Parse(ctx, doc.Raw, doc.SourceName)
	if err != nil {
		return model.SummaryRow{}, err
	}

	norm := p.normalizer.Normalize(rec.Cities)

	var b report.Branches

	if p.classAgg != nil && len(norm) > 0 {
		b.ClassMix, b.ClassMixOK = p.classAgg.Aggregate(norm)
	}
	if !b.ClassMixOK {
		metrics.RecordBranchUnavailable("class_mix")
	}

	if p.eduEst != nil && len(norm) > 0 && len(rec.AgeGender) > 0 {
		b.Education, b.EducationOK = p.eduEst.Estimate(norm, rec.AgeGender)
	}
	if !b.EducationOK {
		metrics.RecordBranchUnavailable("education")
	}

	b.Dispersion, b.DispersionOK = engagement.Dispersion(rec.RecentPosts, p.postSampleSize)
	if !b.DispersionOK {
		metrics.RecordBranchUnavailable("dispersion")
	}

	b.Interests = interest.Rank(rec.Interests, p.translator, p.topInterests)
	if len(b.Interests) == 0 {
		metrics.RecordBranchUnavailable("interests")
	}

	b.TopCities = geo.TopN(norm, p.topCities)

	if p.fetcher != nil {
		live, ferr := p.fetcher.Fetch(ctx, rec.ProfileID)
		if ferr == nil {
			b.Live, b.LiveOK = live, true
		} else if !errors.Is(ferr, enrich.ErrDisabled) {
			metrics.RecordBranchUnavailable("live_metrics")
		}
	}

	return report.Consolidate(rec, b), nil
}
