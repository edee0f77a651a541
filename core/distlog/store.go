// Package distlog defines the append-only audit record written for every
// distribution run and the stores that persist it.
package distlog

import (
	"context"
	"time"
)

// Status is the terminal state of a run's log record.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// SubmissionDetail explains how one submission was handled, sufficient to
// reconstruct why each assignment was made without replaying the algorithm.
type SubmissionDetail struct {
	SubmissionID string   `json:"submission_id"`
	Category     string   `json:"category"`
	Candidates   int      `json:"candidates"`
	Conflicts    int      `json:"conflicts"`
	Assigned     []string `json:"assigned"`
	Fallback     []string `json:"fallback,omitempty"`
	Skipped      []string `json:"skipped,omitempty"` // pairs that already existed
	Shortfall    int      `json:"shortfall,omitempty"`
}

// BalanceSummary describes the reviewer load distribution after a run.
type BalanceSummary struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    int     `json:"min"`
	Max    int     `json:"max"`
}

// Details is the structured per-run detail blob.
type Details struct {
	Submissions []SubmissionDetail `json:"submissions"`
	Balance     *BalanceSummary    `json:"balance,omitempty"`
}

// ErrorEntry is one caught error during a run. Entries are audit data only,
// never used for control flow.
type ErrorEntry struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}

// Record is the append-only audit record of one engine invocation.
type Record struct {
	ID                  string       `json:"id"`
	EventID             string       `json:"event_id"`
	Status              Status       `json:"status"`
	Seed                string       `json:"seed"`
	Strategy            string       `json:"strategy"`
	TotalSubmissions    int          `json:"total_submissions"`
	TotalReviewers      int          `json:"total_reviewers"`
	TotalAssignments    int          `json:"total_assignments"`
	ConflictsDetected   int          `json:"conflicts_detected"`
	FallbackAssignments int          `json:"fallback_assignments"`
	FailedAssignments   int          `json:"failed_assignments"`
	Details             Details      `json:"details"`
	Errors              []ErrorEntry `json:"errors,omitempty"`
	StartedAt           time.Time    `json:"started_at"`
	CompletedAt         *time.Time   `json:"completed_at"`
}

// Duration returns the run duration, or zero while the run is open.
func (r Record) Duration() time.Duration {
	if r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}

// Query defines filters for retrieving records.
type Query struct {
	EventID    string
	ReviewerID string
	Status     Status
	Start      time.Time
	End        time.Time
}

// LogStore persists Records and supports querying.
type LogStore interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// touchesReviewer reports whether the record mentions the reviewer in any
// submission detail.
func (r Record) touchesReviewer(id string) bool {
	for _, d := range r.Details.Submissions {
		for _, rid := range d.Assigned {
			if rid == id {
				return true
			}
		}
		for _, rid := range d.Fallback {
			if rid == id {
				return true
			}
		}
	}
	return false
}

// matches applies the in-memory part of a query to a record.
func (r Record) matches(q Query) bool {
	if q.EventID != "" && r.EventID != q.EventID {
		return false
	}
	if q.Status != "" && r.Status != q.Status {
		return false
	}
	if !q.Start.IsZero() && r.StartedAt.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.StartedAt.After(q.End) {
		return false
	}
	if q.ReviewerID != "" && !r.touchesReviewer(q.ReviewerID) {
		return false
	}
	return true
}
