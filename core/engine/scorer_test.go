package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/symposia/revdist/core/model"
)

func TestScoreWeights(t *testing.T) {
	p := model.ReviewerProfile{ReviewerID: "r1", MaxAssignments: 10, Available: true}

	// Idle reviewer with the highest affinity scores the maximum.
	assert.InDelta(t, 1.0, Score(p, 0, model.AffinityHigh, false), 1e-9)

	// No affinity leaves only the availability component.
	assert.InDelta(t, 0.3, Score(p, 0, model.AffinityAvoid, false), 1e-9)

	// Half-loaded with medium affinity: 0.3*0.5 + 0.7*(2/3).
	assert.InDelta(t, 0.15+0.7*2.0/3.0, Score(p, 5, model.AffinityMedium, false), 1e-9)
}

func TestScoreLoadPenalty(t *testing.T) {
	p := model.ReviewerProfile{ReviewerID: "r1", MaxAssignments: 4, Available: true}

	base := Score(p, 2, model.AffinityHigh, false)
	penalized := Score(p, 2, model.AffinityHigh, true)
	// Half load halves the penalty factor: score * (1 - 0.5*0.5).
	assert.InDelta(t, base*0.75, penalized, 1e-9)
	assert.Less(t, penalized, base)
}

func TestScoreClamps(t *testing.T) {
	p := model.ReviewerProfile{ReviewerID: "r1", MaxAssignments: 2, Available: true}

	// Over capacity still yields a non-negative score.
	assert.GreaterOrEqual(t, Score(p, 5, model.AffinityAvoid, true), 0.0)

	// A profile that never validated scores zero instead of dividing by zero.
	assert.Zero(t, Score(model.ReviewerProfile{}, 0, model.AffinityHigh, false))
}

func TestScoreMonotonicInLoad(t *testing.T) {
	p := model.ReviewerProfile{ReviewerID: "r1", MaxAssignments: 6, Available: true}
	prev := 2.0
	for load := 0; load <= 6; load++ {
		s := Score(p, load, model.AffinityMedium, true)
		assert.Less(t, s, prev, "load %d", load)
		prev = s
	}
}
