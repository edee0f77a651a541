package engine

import "github.com/symposia/revdist/core/model"

// Scoring weights for the balanced strategy: remaining availability counts
// for 30%, category affinity for 70%, and the combined score decays with the
// reviewer's current load.
const (
	availabilityWeight = 0.3
	affinityWeight     = 0.7
	loadPenaltyFactor  = 0.5

	maxAffinity = float64(model.AffinityHigh)
)

// Score computes the suitability of a reviewer for a submission in [0,1]
// given the load this run has accumulated for them. applyLoadPenalty mirrors
// the per-event load balancing flag.
func Score(p model.ReviewerProfile, load int, affinity model.AffinityLevel, applyLoadPenalty bool) float64 {
	if p.MaxAssignments <= 0 {
		return 0
	}
	avail := float64(p.MaxAssignments-load) / float64(p.MaxAssignments)
	if avail < 0 {
		avail = 0
	}
	if avail > 1 {
		avail = 1
	}
	score := availabilityWeight*avail + affinityWeight*float64(affinity)/maxAffinity
	if applyLoadPenalty {
		score *= 1 - loadPenaltyFactor*float64(load)/float64(p.MaxAssignments)
	}
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
