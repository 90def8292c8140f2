package scoring

import (
	"sort"

	"github.com/civicsource/civicsource/internal/civic"
)

const (
	// DefaultSourceLimit is how many search results are considered for ranking.
	DefaultSourceLimit = 6
	// DefaultKeep is how many ranked matches are shown to the buyer.
	DefaultKeep = 3
)

// Ranker scores and orders candidates for a need.
type Ranker struct {
	SourceLimit int
	Keep        int
}

// NewRanker returns a ranker with the default limits.
func NewRanker() *Ranker {
	return &Ranker{SourceLimit: DefaultSourceLimit, Keep: DefaultKeep}
}

// Rank ranks candidates with the default source limit.
func Rank(candidates []civic.Candidate, need civic.Need, keep int) []civic.ScoredCandidate {
	return (&Ranker{SourceLimit: DefaultSourceLimit, Keep: keep}).Rank(candidates, need)
}

// Rank takes the first SourceLimit candidates in input order, scores them,
// sorts them by score descending keeping input order between equal scores and
// returns at most Keep of them. The input slice is not modified.
func (r *Ranker) Rank(candidates []civic.Candidate, need civic.Need) []civic.ScoredCandidate {
	limit := r.SourceLimit
	if limit <= 0 || limit > len(candidates) {
		limit = len(candidates)
	}

	scored := make([]civic.ScoredCandidate, 0, limit)
	for _, candidate := range candidates[:limit] {
		scored = append(scored, civic.ScoredCandidate{
			Candidate:  candidate,
			MatchScore: Score(candidate, need),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].MatchScore > scored[j].MatchScore
	})

	keep := r.Keep
	if keep < 0 {
		keep = 0
	}
	if keep < len(scored) {
		scored = scored[:keep]
	}

	return scored
}
