// Package engine implements the submission-to-reviewer distribution engine.
//
// A run loads the event's submissions, reviewer profiles and preferences,
// filters candidates through the conflict detector, ranks them with the
// configured strategy (balanced, stratified or random), tops up unmet quotas
// with the least-loaded fallback and persists the assignments together with
// an append-only audit record of every decision.
package engine
