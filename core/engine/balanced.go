package engine

import (
	"sort"

	"github.com/symposia/revdist/core/model"
)

// BalancedRanker scores every candidate with the weighted suitability score
// and orders them best first. Ties keep candidate insertion order; there is
// no randomization in this strategy.
type BalancedRanker struct{}

// Rank implements Ranker.
func (BalancedRanker) Rank(sub model.Submission, category string, candidates []Candidate, rctx *RunContext) []Candidate {
	list := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		affinity := model.AffinityAvoid
		if rctx.Config.EnableAffinityMatching && c.HasPreference {
			if c.Affinity == model.AffinityAvoid {
				// The reviewer explicitly avoids this category.
				continue
			}
			affinity = c.Affinity
		}
		c.Score = Score(c.Profile, rctx.Load(c.Profile.ReviewerID), affinity, rctx.Config.EnableLoadBalancing)
		list = append(list, c)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Score > list[j].Score })
	return list
}
