package events

// RunStartedEvent is published when a distribution run begins.
type RunStartedEvent struct {
	EventID     string
	LogID       string
	Strategy    string
	Submissions int
}

// ConflictEvent is published when the conflict detector excludes a reviewer
// from a submission's candidate pool.
type ConflictEvent struct {
	EventID      string
	SubmissionID string
	ReviewerID   string
}

// FallbackEvent is published for each assignment created by the fallback
// top-up rather than the primary strategy.
type FallbackEvent struct {
	EventID      string
	SubmissionID string
	ReviewerID   string
}

// ShortfallEvent is published when a submission ends the run with fewer
// reviewers than requested.
type ShortfallEvent struct {
	EventID      string
	SubmissionID string
	Missing      int
}

// RunCompletedEvent is published once a run is finalized, whether it
// succeeded or failed.
type RunCompletedEvent struct {
	EventID     string
	LogID       string
	Failed      bool
	Assignments int
}
