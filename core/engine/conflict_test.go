package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/symposia/revdist/core/model"
)

func TestConflictDetector(t *testing.T) {
	cfg := model.DefaultDistributionConfig("ev1")
	detector := ConflictDetector{}

	sub := model.Submission{
		ID:       "s1",
		EventID:  "ev1",
		AuthorID: "author-1",
		Attributes: model.Attributes{
			model.AttrInstitution: "  USP ",
		},
	}

	tests := []struct {
		name     string
		profile  model.ReviewerProfile
		expected bool
	}{
		{
			name:     "no overlap",
			profile:  model.ReviewerProfile{ReviewerID: "r1", Institution: "Unicamp"},
			expected: false,
		},
		{
			name:     "self review",
			profile:  model.ReviewerProfile{ReviewerID: "author-1"},
			expected: true,
		},
		{
			name:     "same institution case insensitive",
			profile:  model.ReviewerProfile{ReviewerID: "r1", Institution: "usp"},
			expected: true,
		},
		{
			name:     "author on exclusion list",
			profile:  model.ReviewerProfile{ReviewerID: "r1", ExcludedAuthors: []string{"author-1"}},
			expected: true,
		},
		{
			name:     "institution on exclusion list",
			profile:  model.ReviewerProfile{ReviewerID: "r1", ExcludedInstitutions: []string{"USP"}},
			expected: true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, detector.Conflicted(sub, tc.profile, cfg))
		})
	}
}

func TestConflictDetectorDisabled(t *testing.T) {
	cfg := model.DefaultDistributionConfig("ev1")
	cfg.EnableConflictDetection = false

	sub := model.Submission{ID: "s1", EventID: "ev1", AuthorID: "author-1"}
	self := model.ReviewerProfile{ReviewerID: "author-1"}
	assert.False(t, ConflictDetector{}.Conflicted(sub, self, cfg))
}

func TestConflictDetectorMissingFields(t *testing.T) {
	cfg := model.DefaultDistributionConfig("ev1")

	// No author and no institution on the submission: nothing to match on.
	sub := model.Submission{ID: "s1", EventID: "ev1"}
	p := model.ReviewerProfile{
		ReviewerID:           "r1",
		Institution:          "USP",
		ExcludedInstitutions: []string{"USP"},
	}
	assert.False(t, ConflictDetector{}.Conflicted(sub, p, cfg))
}
