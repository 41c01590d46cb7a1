// Package engagement measures the volatility of post-level interaction
// counts, used as a proxy for audience consistency.
package engagement

import (
	"math"

	"github.com/okian/persona/internal/domain/model"
)

// DefaultSampleSize caps how many recent posts feed the dispersion score.
const DefaultSampleSize = 12

// Dispersion computes the coefficient-of-variation-based dispersion of likes
// and comments across up to sampleSize posts (sampleSize <= 0 means all).
// Each series with a positive mean contributes (stddev/mean)x100. When the
// likes coefficient is positive the score is the average of both
// coefficients; otherwise the comments coefficient stands alone, likes being
// the primary signal. The result is rounded half away from zero. Returns
// ok=false when there are no posts or when neither series has a positive
// mean, since a ratio against a zero mean carries no signal.
func Dispersion(posts []model.Post, sampleSize int) (int, bool) {
	if len(posts) == 0 {
		return 0, false
	}
	if sampleSize > 0 && len(posts) > sampleSize {
		posts = posts[:sampleSize]
	}

	likes := make([]float64, len(posts))
	comments := make([]float64, len(posts))
	for i, p := range posts {
		likes[i] = float64(p.Likes)
		comments[i] = float64(p.Comments)
	}

	likesCV, likesOK := coefficientOfVariation(likes)
	commentsCV, commentsOK := coefficientOfVariation(comments)
	if !likesOK && !commentsOK {
		return 0, false
	}

	score := commentsCV
	if likesCV > 0 {
		score = (likesCV + commentsCV) / 2
	}
	return int(math.Round(score)), true
}

// coefficientOfVariation returns (population stddev / mean) x 100. ok is
// false when the mean is not positive and the ratio is undefined.
func coefficientOfVariation(series []float64) (float64, bool) {
	if len(series) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range series {
		sum += v
	}
	mean := sum / float64(len(series))
	if mean <= 0 {
		return 0, false
	}
	var sq float64
	for _, v := range series {
		d := v - mean
		sq += d * d
	}
	stddev := math.Sqrt(sq / float64(len(series)))
	return stddev / mean * 100, true
}
