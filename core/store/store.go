// Package store defines the persistent view of submissions, reviewers and
// assignments consumed by the distribution engine. Reads happen at the start
// of a run and writes at the end; the engine never touches the store mid-run.
package store

import (
	"context"
	"errors"

	"github.com/symposia/revdist/core/model"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("store: not found")

// Store is the persistence boundary of the distribution engine.
type Store interface {
	// Config returns the distribution configuration for the event, or
	// ErrNotFound when none has been created yet.
	Config(ctx context.Context, eventID string) (model.DistributionConfig, error)
	SaveConfig(ctx context.Context, cfg model.DistributionConfig) error

	// Submissions returns the listed submissions, restricted to the event.
	// Ids not belonging to the event are silently dropped.
	Submissions(ctx context.Context, eventID string, ids []string) ([]model.Submission, error)
	// PendingSubmissions returns the event's backlog: submissions with no
	// assignment, or whose assignments are all incomplete.
	PendingSubmissions(ctx context.Context, eventID string) ([]model.Submission, error)

	ReviewerProfiles(ctx context.Context, eventID string) ([]model.ReviewerProfile, error)
	Preferences(ctx context.Context, eventID string) ([]model.ReviewerPreference, error)

	// Assignments returns every assignment of the event.
	Assignments(ctx context.Context, eventID string) ([]model.Assignment, error)
	// SaveAssignments persists assignments, skipping any (submission,
	// reviewer) pair that already exists.
	SaveAssignments(ctx context.Context, assignments []model.Assignment) error

	// UpdateLoads flushes the per-reviewer load counters accumulated during
	// a run in a single write.
	UpdateLoads(ctx context.Context, eventID string, loads map[string]int) error

	Close() error
}
