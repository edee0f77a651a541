package model

import "testing"

func TestReviewerProfileHasCapacity(t *testing.T) {
	cases := []struct {
		name string
		p    ReviewerProfile
		want bool
	}{
		{"available with room", ReviewerProfile{Available: true, MaxAssignments: 3, CurrentLoad: 1}, true},
		{"at capacity", ReviewerProfile{Available: true, MaxAssignments: 3, CurrentLoad: 3}, false},
		{"unavailable", ReviewerProfile{Available: false, MaxAssignments: 3, CurrentLoad: 0}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.p.HasCapacity(); got != tc.want {
				t.Fatalf("HasCapacity() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestReviewerProfileValidate(t *testing.T) {
	if err := (ReviewerProfile{MaxAssignments: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero max assignments")
	}
	if err := (ReviewerProfile{MaxAssignments: 5}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStrategyFromString(t *testing.T) {
	for _, s := range []Strategy{StrategyBalanced, StrategyStratified, StrategyRandom} {
		got, ok := StrategyFromString(s.String())
		if !ok || got != s {
			t.Fatalf("round trip failed for %s", s)
		}
	}
	if _, ok := StrategyFromString("bogus"); ok {
		t.Fatalf("expected bogus strategy to be rejected")
	}
}

func TestDefaultDistributionConfig(t *testing.T) {
	cfg := DefaultDistributionConfig("ev1")
	if cfg.ReviewersPerSubmission != 2 {
		t.Fatalf("expected 2 reviewers per submission, got %d", cfg.ReviewersPerSubmission)
	}
	if cfg.Strategy != StrategyBalanced {
		t.Fatalf("expected balanced strategy, got %s", cfg.Strategy)
	}
	if !cfg.EnableConflictDetection {
		t.Fatalf("expected conflict detection enabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestSubmissionAttributes(t *testing.T) {
	s := Submission{Attributes: Attributes{AttrCategory: "mat", AttrInstitution: "IFPR"}}
	if s.Category() != "mat" || s.Institution() != "IFPR" {
		t.Fatalf("unexpected attribute values: %q %q", s.Category(), s.Institution())
	}
	var empty Submission
	if empty.Category() != "" {
		t.Fatalf("expected empty category on nil attributes")
	}
}
