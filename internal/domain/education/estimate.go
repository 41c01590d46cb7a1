// Package education estimates audience schooling from geography and
// demographics, bucketed through a fixed-variance normal model.
package education

import (
	"math"

	"github.com/okian/persona/internal/domain/model"
	"github.com/okian/persona/pkg/metrics"
)

// Gender keys used by the reference table.
const (
	Male   = "male"
	Female = "female"
)

// Bucket boundaries in years of schooling.
const (
	boundaryLow  = 5.0
	boundaryMid  = 9.0
	boundaryHigh = 12.0
)

// defaultStdDev is the fixed spread of the fitted normal distribution. It is
// a deliberate simplification, not estimated from data.
const defaultStdDev = 3.0

// Key addresses one average-years entry in the reference table.
type Key struct {
	City   string
	Band   string // age-band code matching the export, e.g. "18-24"
	Gender string // Male or Female
}

// Table maps (city, age band, gender) to average years of education.
// Loaded once, read-only afterwards.
type Table map[Key]float64

// Option applies a configuration option to the Estimator.
type Option func(*Estimator)

// WithStdDev overrides the spread of the fitted normal distribution.
func WithStdDev(sigma float64) Option {
	return func(e *Estimator) {
		if sigma > 0 {
			e.stdDev = sigma
		}
	}
}

// Estimator derives a weighted mean years-of-education and its bucketed
// distribution for one influencer.
type Estimator struct {
	table  Table
	stdDev float64
}

// NewEstimator creates an Estimator over a loaded education table.
func NewEstimator(table Table, opts ...Option) *Estimator {
	e := &Estimator{
		table:  table,
		stdDev: defaultStdDev,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Estimate crosses the influencer's normalized cities with its age/gender
// bands and joins each (city, band, gender) combination against the reference
// table. Each matched row contributes years x genderShare x cityWeight; the
// city weight is the city's share of the influencer total and is not
// renormalized along the age/gender axis. Unmatched combinations are dropped
// under the same lossy-join policy as the class mix. Returns ok=false when
// nothing joined.
func (e *Estimator) Estimate(cities []model.NormalizedCity, bands []model.AgeGenderShare) (model.EducationEstimate, bool) {
	var mean float64
	matched := false
	for _, c := range cities {
		for _, b := range bands {
			if years, ok := e.table[Key{City: c.Name, Band: b.Band, Gender: Male}]; ok {
				mean += years * b.Male * c.Weight
				matched = true
			} else {
				metrics.RecordJoinMiss("education")
			}
			if years, ok := e.table[Key{City: c.Name, Band: b.Band, Gender: Female}]; ok {
				mean += years * b.Female * c.Weight
				matched = true
			} else {
				metrics.RecordJoinMiss("education")
			}
		}
	}
	if !matched {
		return model.EducationEstimate{}, false
	}
	return e.fit(mean), true
}

// fit buckets the probability mass of a normal distribution centered on mean
// into the four education bands. The buckets partition the real line, so the
// probabilities sum to exactly 1.
func (e *Estimator) fit(mean float64) model.EducationEstimate {
	pLow := normalCDF(boundaryLow, mean, e.stdDev)
	pMid := normalCDF(boundaryMid, mean, e.stdDev)
	pHigh := normalCDF(boundaryHigh, mean, e.stdDev)
	return model.EducationEstimate{
		MeanYears: mean,
		Under5:    pLow,
		Mid5to9:   pMid - pLow,
		Mid9to12:  pHigh - pMid,
		Over12:    1 - pHigh,
	}
}

// normalCDF evaluates the cumulative distribution of N(mean, sigma^2) at x.
func normalCDF(x, mean, sigma float64) float64 {
	return 0.5 * (1 + math.Erf((x-mean)/(sigma*math.Sqrt2)))
}
