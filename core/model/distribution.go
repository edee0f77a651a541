package model

import "fmt"

// Strategy selects the algorithm variant used to rank and pick reviewers.
type Strategy int

const (
	StrategyBalanced Strategy = iota
	StrategyStratified
	StrategyRandom
)

// String returns a human-readable representation of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyBalanced:
		return "balanced"
	case StrategyStratified:
		return "stratified"
	case StrategyRandom:
		return "random"
	default:
		return "unknown"
	}
}

// StrategyFromString parses a strategy name.
func StrategyFromString(s string) (Strategy, bool) {
	switch s {
	case "balanced":
		return StrategyBalanced, true
	case "stratified":
		return StrategyStratified, true
	case "random":
		return StrategyRandom, true
	default:
		return 0, false
	}
}

// DistributionConfig is the per-event configuration of the engine. One exists
// per event; it is created lazily with defaults on the first run.
type DistributionConfig struct {
	EventID                 string
	ReviewersPerSubmission  int
	Strategy                Strategy
	EnableConflictDetection bool
	EnableLoadBalancing     bool
	EnableAffinityMatching  bool
	// MaxSubmissionsPerReviewer caps a reviewer's load for this event in
	// addition to the profile's MaxAssignments. Zero means no extra cap.
	MaxSubmissionsPerReviewer int
	MinAffinityLevel          AffinityLevel
	AllowOverloadOnShortage   bool
	FallbackToRandom          bool
}

// DefaultDistributionConfig returns the documented defaults: two reviewers per
// submission, balanced strategy, conflict detection on.
func DefaultDistributionConfig(eventID string) DistributionConfig {
	return DistributionConfig{
		EventID:                 eventID,
		ReviewersPerSubmission:  2,
		Strategy:                StrategyBalanced,
		EnableConflictDetection: true,
		EnableLoadBalancing:     true,
		EnableAffinityMatching:  true,
		MinAffinityLevel:        AffinityLow,
		FallbackToRandom:        true,
	}
}

// Validate checks that the configuration is sound.
func (c DistributionConfig) Validate() error {
	if c.EventID == "" {
		return fmt.Errorf("event id is required")
	}
	if c.ReviewersPerSubmission <= 0 {
		return fmt.Errorf("reviewers per submission must be positive")
	}
	if c.MinAffinityLevel < AffinityAvoid || c.MinAffinityLevel > AffinityHigh {
		return fmt.Errorf("min affinity level out of range")
	}
	return nil
}
