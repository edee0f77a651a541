package engine

import "errors"

// Fatal run conditions. Everything else (conflicts, shortfalls, fallback
// usage) is accumulated into the distribution log instead of aborting.
var (
	ErrNoSubmissions = errors.New("engine: no submissions to distribute")
	ErrNoReviewers   = errors.New("engine: no reviewers with spare capacity")
)
