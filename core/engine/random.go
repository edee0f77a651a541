package engine

import (
	"hash/fnv"

	"github.com/symposia/revdist/core/model"
)

// RandomRanker shuffles the candidates with the run's seeded generator. The
// ordering is a function of the seed and the candidate insertion order only,
// so a run with the same seed over the same inputs is exactly replayable.
type RandomRanker struct{}

// Rank implements Ranker.
func (RandomRanker) Rank(sub model.Submission, category string, candidates []Candidate, rctx *RunContext) []Candidate {
	list := append([]Candidate(nil), candidates...)
	rctx.Rand.Shuffle(len(list), func(i, j int) {
		list[i], list[j] = list[j], list[i]
	})
	return list
}

// seedSource derives the generator source from the run's seed string.
func seedSource(seed string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	return int64(h.Sum64())
}

func rankerFor(s model.Strategy) Ranker {
	switch s {
	case model.StrategyStratified:
		return StratifiedRanker{}
	case model.StrategyRandom:
		return RandomRanker{}
	default:
		return BalancedRanker{}
	}
}
