package store

import (
	"context"
	"sync"

	"github.com/symposia/revdist/core/model"
)

// MemoryStore is an in-memory Store. Insertion order is preserved so that
// candidate iteration stays deterministic, which the engine relies on for
// tie-breaking.
type MemoryStore struct {
	mu          sync.RWMutex
	configs     map[string]model.DistributionConfig
	submissions []model.Submission
	profiles    []model.ReviewerProfile
	prefs       []model.ReviewerPreference
	assignments []model.Assignment
	pairs       map[[2]string]bool
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		configs: make(map[string]model.DistributionConfig),
		pairs:   make(map[[2]string]bool),
	}
}

// AddSubmission registers a submission.
func (m *MemoryStore) AddSubmission(s model.Submission) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submissions = append(m.submissions, s)
}

// AddReviewerProfile registers a reviewer profile.
func (m *MemoryStore) AddReviewerProfile(p model.ReviewerProfile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles = append(m.profiles, p)
}

// AddPreference registers a reviewer preference.
func (m *MemoryStore) AddPreference(p model.ReviewerPreference) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs = append(m.prefs, p)
}

// Config implements Store.
func (m *MemoryStore) Config(ctx context.Context, eventID string) (model.DistributionConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg, ok := m.configs[eventID]
	if !ok {
		return model.DistributionConfig{}, ErrNotFound
	}
	return cfg, nil
}

// SaveConfig implements Store.
func (m *MemoryStore) SaveConfig(ctx context.Context, cfg model.DistributionConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configs[cfg.EventID] = cfg
	return nil
}

// Submissions implements Store.
func (m *MemoryStore) Submissions(ctx context.Context, eventID string, ids []string) ([]model.Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var res []model.Submission
	for _, s := range m.submissions {
		if s.EventID == eventID && wanted[s.ID] {
			res = append(res, s)
		}
	}
	return res, nil
}

// PendingSubmissions implements Store.
func (m *MemoryStore) PendingSubmissions(ctx context.Context, eventID string) ([]model.Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	completed := make(map[string]bool)
	for _, a := range m.assignments {
		if a.Completed {
			completed[a.SubmissionID] = true
		}
	}
	var res []model.Submission
	for _, s := range m.submissions {
		if s.EventID == eventID && !completed[s.ID] {
			res = append(res, s)
		}
	}
	return res, nil
}

// ReviewerProfiles implements Store.
func (m *MemoryStore) ReviewerProfiles(ctx context.Context, eventID string) ([]model.ReviewerProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var res []model.ReviewerProfile
	for _, p := range m.profiles {
		if p.EventID == eventID {
			res = append(res, p)
		}
	}
	return res, nil
}

// Preferences implements Store.
func (m *MemoryStore) Preferences(ctx context.Context, eventID string) ([]model.ReviewerPreference, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var res []model.ReviewerPreference
	for _, p := range m.prefs {
		if p.EventID == eventID {
			res = append(res, p)
		}
	}
	return res, nil
}

// Assignments implements Store.
func (m *MemoryStore) Assignments(ctx context.Context, eventID string) ([]model.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var res []model.Assignment
	for _, a := range m.assignments {
		if a.EventID == eventID {
			res = append(res, a)
		}
	}
	return res, nil
}

// SaveAssignments implements Store. Duplicate pairs are skipped.
func (m *MemoryStore) SaveAssignments(ctx context.Context, assignments []model.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range assignments {
		key := [2]string{a.SubmissionID, a.ReviewerID}
		if m.pairs[key] {
			continue
		}
		m.pairs[key] = true
		m.assignments = append(m.assignments, a)
	}
	return nil
}

// UpdateLoads implements Store.
func (m *MemoryStore) UpdateLoads(ctx context.Context, eventID string, loads map[string]int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.profiles {
		if p.EventID != eventID {
			continue
		}
		if load, ok := loads[p.ReviewerID]; ok {
			m.profiles[i].CurrentLoad = load
		}
	}
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error { return nil }
