package model

// NormalizedCity is a city share rescaled over one influencer's own list.
type NormalizedCity struct {
	Name   string
	Weight float64
}

// ClassMix is a weighted socioeconomic class distribution. Shares are on the
// same scale as the reference table (~percent); total mass can be below 100
// when city coverage is incomplete.
type ClassMix struct {
	DE float64
	C  float64
	B  float64
	A  float64
}

// EducationEstimate is the fitted education distribution for one influencer.
// Bucket probabilities sum to 1 by construction.
type EducationEstimate struct {
	MeanYears float64
	Under5    float64 // P(years < 5)
	Mid5to9   float64 // P(5 <= years < 9)
	Mid9to12  float64 // P(9 <= years < 12)
	Over12    float64 // P(years >= 12)
}

// RankedInterest is one translated audience interest with its percentage.
type RankedInterest struct {
	Name       string
	Percentage float64
}

// LiveMetrics carries optionally fetched live profile metrics.
type LiveMetrics struct {
	Followers      int64
	EngagementRate float64
}

// SummaryRow is the consolidated per-influencer result. The *OK flags mark
// branch availability; consumers render missing branches as explicit "n/a",
// never as zeros.
type SummaryRow struct {
	ProfileID   string
	DisplayName string

	Followers      int64
	AvgLikes       float64
	AvgComments    float64
	AvgReelsPlays  float64
	EngagementRate float64

	ClassMix   ClassMix
	ClassMixOK bool

	Education   EducationEstimate
	EducationOK bool

	Dispersion   int
	DispersionOK bool

	Interests []RankedInterest

	TopCities []NormalizedCity

	Live   LiveMetrics
	LiveOK bool
}
