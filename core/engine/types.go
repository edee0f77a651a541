package engine

import (
	"context"
	"math/rand"
	"time"

	"github.com/symposia/revdist/core/model"
)

// Candidate pairs a reviewer profile with its affinity for the submission's
// normalized category. Score is filled in by the ranking strategy.
type Candidate struct {
	Profile       model.ReviewerProfile
	Affinity      model.AffinityLevel
	HasPreference bool
	Score         float64
}

// RunContext carries the per-run shared state into strategies and fallback.
// Loads maps reviewer id to current load; it is owned exclusively by the
// engine for the duration of the run and flushed to the store once at the end.
type RunContext struct {
	Config model.DistributionConfig
	Loads  map[string]int
	Rand   *rand.Rand
	Now    time.Time
}

// Load returns the reviewer's load as seen by this run.
func (ctx *RunContext) Load(id string) int { return ctx.Loads[id] }

// hasCapacity reports whether the reviewer can take one more assignment under
// both the profile limit and the per-event cap.
func (ctx *RunContext) hasCapacity(p model.ReviewerProfile) bool {
	load := ctx.Loads[p.ReviewerID]
	if !p.Available || load >= p.MaxAssignments {
		return false
	}
	if cap := ctx.Config.MaxSubmissionsPerReviewer; cap > 0 && load >= cap {
		return false
	}
	return true
}

// Ranker orders the candidates for one submission, best first.
type Ranker interface {
	Rank(sub model.Submission, category string, candidates []Candidate, rctx *RunContext) []Candidate
}

// Notifier is invoked after a successful run with the event and log
// identifiers only. Notification failures never roll back a distribution.
type Notifier interface {
	RunCompleted(ctx context.Context, eventID, logID string) error
}

// Request is the engine's single entry point contract.
type Request struct {
	EventID string
	// SubmissionIDs restricts the run to the listed submissions. When empty
	// the event's backlog is used.
	SubmissionIDs []string
	// Seed makes the random strategy replayable. A fresh seed is drawn when
	// empty; whichever seed was used is recorded in the log.
	Seed       string
	OperatorID string
}

// Summary is returned to the caller for every run, complete or failed, so
// that "ran with shortfalls" is distinguishable from "did not run".
type Summary struct {
	LogID               string
	EventID             string
	Seed                string
	TotalSubmissions    int
	TotalReviewers      int
	TotalAssignments    int
	ConflictsDetected   int
	FallbackAssignments int
	FailedAssignments   int
}
