package model

import "fmt"

// AffinityLevel is the ordinal preference a reviewer has for a category.
type AffinityLevel int

const (
	AffinityAvoid AffinityLevel = iota
	AffinityLow
	AffinityMedium
	AffinityHigh
)

// String returns a human-readable representation of the affinity level.
func (a AffinityLevel) String() string {
	switch a {
	case AffinityAvoid:
		return "avoid"
	case AffinityLow:
		return "low"
	case AffinityMedium:
		return "medium"
	case AffinityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// ReviewerProfile is a reviewer's capacity record for one event.
// CurrentLoad is mutated only by the distribution engine, which owns it
// exclusively for the duration of a run.
type ReviewerProfile struct {
	ReviewerID           string
	EventID              string
	MaxAssignments       int
	CurrentLoad          int
	Available            bool
	Institution          string
	ExcludedAuthors      []string
	ExcludedInstitutions []string
}

// Validate checks that the profile configuration is sound.
// In particular MaxAssignments must be positive.
func (p ReviewerProfile) Validate() error {
	if p.MaxAssignments <= 0 {
		return fmt.Errorf("max assignments must be positive")
	}
	return nil
}

// HasCapacity returns true if the reviewer can accept one more assignment.
func (p ReviewerProfile) HasCapacity() bool {
	return p.Available && p.CurrentLoad < p.MaxAssignments
}

// ReviewerPreference associates a reviewer with a normalized category.
// Unique per (reviewer, event, category); read-only to the engine.
type ReviewerPreference struct {
	ReviewerID string
	EventID    string
	Category   string
	Affinity   AffinityLevel
}
