package engine

import (
	"strings"

	"github.com/symposia/revdist/core/model"
)

// ConflictDetector decides whether a reviewer is eligible to review a
// submission. Rules are evaluated in order and short-circuit on the first
// match; a missing optional field means "no conflict from that rule".
type ConflictDetector struct{}

// Conflicted reports whether the reviewer must be excluded from the
// submission's candidate pool.
func (ConflictDetector) Conflicted(sub model.Submission, p model.ReviewerProfile, cfg model.DistributionConfig) bool {
	if !cfg.EnableConflictDetection {
		return false
	}
	if sub.AuthorID != "" && sub.AuthorID == p.ReviewerID {
		return true
	}
	inst := strings.TrimSpace(sub.Institution())
	if inst != "" && p.Institution != "" && strings.EqualFold(inst, strings.TrimSpace(p.Institution)) {
		return true
	}
	if sub.AuthorID != "" {
		for _, excluded := range p.ExcludedAuthors {
			if excluded == sub.AuthorID {
				return true
			}
		}
	}
	if inst != "" {
		for _, excluded := range p.ExcludedInstitutions {
			if strings.EqualFold(strings.TrimSpace(excluded), inst) {
				return true
			}
		}
	}
	return false
}
