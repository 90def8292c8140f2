// Package scoring ranks candidate businesses against a posted need.
package scoring

import (
	"math"
	"strings"

	"github.com/civicsource/civicsource/internal/civic"
)

// Score components.
const (
	baseScore         = 80.0
	defaultRating     = 4.5
	ratingMultiplier  = 3.0
	maxRatingTerm     = 20.0
	categoryBoost     = 5.0
	chainPenalty      = -8.0
	registrationBoost = 4.0

	MinScore = 50
	MaxScore = 99
)

// Score returns the match score of the candidate for the need. The result is
// always within [MinScore, MaxScore].
func Score(candidate civic.Candidate, need civic.Need) int {
	raw := baseScore + ratingTerm(candidate) + categoryTerm(candidate, need)

	if candidate.IsChain {
		raw += chainPenalty
	}
	if candidate.GovernmentRegistered {
		raw += registrationBoost
	}

	return clamp(roundHalfUp(raw), MinScore, MaxScore)
}

// ratingTerm treats a zero rating the same as a missing one.
func ratingTerm(candidate civic.Candidate) float64 {
	rating := defaultRating
	if candidate.Rating != nil && *candidate.Rating != 0 {
		rating = *candidate.Rating
	}
	return math.Min(maxRatingTerm, rating*ratingMultiplier)
}

// categoryTerm matches the need category as a case-insensitive substring of the
// pipe-joined candidate categories. An empty need category always matches.
func categoryTerm(candidate civic.Candidate, need civic.Need) float64 {
	joined := strings.ToLower(strings.Join(candidate.Categories, "|"))
	if strings.Contains(joined, strings.ToLower(need.Category)) {
		return categoryBoost
	}
	return 0
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
