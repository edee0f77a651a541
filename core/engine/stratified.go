package engine

import (
	"sort"

	"github.com/symposia/revdist/core/model"
)

// StratifiedRanker keeps only reviewers with a declared preference for the
// submission's category at or above the configured minimum affinity, ranked
// by affinity descending. When the category has no qualifying reviewer and
// fallback-to-random is enabled, every candidate is admitted with low
// affinity in insertion order.
type StratifiedRanker struct{}

// Rank implements Ranker.
func (StratifiedRanker) Rank(sub model.Submission, category string, candidates []Candidate, rctx *RunContext) []Candidate {
	var list []Candidate
	for _, c := range candidates {
		if !c.HasPreference || c.Affinity < rctx.Config.MinAffinityLevel {
			continue
		}
		c.Score = float64(c.Affinity) / maxAffinity
		list = append(list, c)
	}
	if len(list) == 0 && rctx.Config.FallbackToRandom {
		for _, c := range candidates {
			c.Affinity = model.AffinityLow
			c.Score = float64(model.AffinityLow) / maxAffinity
			list = append(list, c)
		}
		return list
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Affinity > list[j].Affinity })
	return list
}
