package model

import "time"

// DistributionType records how an assignment came to exist.
type DistributionType int

const (
	DistributionManual DistributionType = iota
	DistributionAutomatic
)

// String returns a human-readable representation of the distribution type.
func (t DistributionType) String() string {
	switch t {
	case DistributionManual:
		return "manual"
	case DistributionAutomatic:
		return "automatic"
	default:
		return "unknown"
	}
}

// Assignment pairs a submission with a reviewer. At most one assignment may
// exist per (submission, reviewer) pair; insertion is idempotent.
type Assignment struct {
	ID           string
	SubmissionID string
	ReviewerID   string
	EventID      string
	Deadline     *time.Time
	Completed    bool

	// Provenance.
	Distribution  DistributionType
	DistributedAt time.Time
	OperatorID    string
	Notes         string
	Fallback      bool // assigned outside the primary strategy's ranking
	Reevaluate    bool
}
