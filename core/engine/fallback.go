package engine

import "sort"

// fallbackCandidates orders the remaining eligible reviewers for a quota
// top-up: lowest current load first to equalize load, ties by insertion
// order. With allow-overload-on-shortage, reviewers at capacity stay
// eligible; conflicts are never relaxed.
func fallbackCandidates(candidates []Candidate, rctx *RunContext, taken map[string]bool) []Candidate {
	var pool []Candidate
	for _, c := range candidates {
		if taken[c.Profile.ReviewerID] {
			continue
		}
		if rctx.hasCapacity(c.Profile) || (rctx.Config.AllowOverloadOnShortage && c.Profile.Available) {
			pool = append(pool, c)
		}
	}
	sort.SliceStable(pool, func(i, j int) bool {
		return rctx.Load(pool[i].Profile.ReviewerID) < rctx.Load(pool[j].Profile.ReviewerID)
	})
	return pool
}
