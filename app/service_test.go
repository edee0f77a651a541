package app

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symposia/revdist/config"
	"github.com/symposia/revdist/core/distlog"
	"github.com/symposia/revdist/core/engine"
	"github.com/symposia/revdist/core/model"
	"github.com/symposia/revdist/core/store"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Store:    config.StoreConfig{Backend: "memory"},
		Logging:  config.LoggingConfig{Backend: "jsonl", Path: filepath.Join(t.TempDir(), "distribution.log")},
		Metrics:  config.MetricsConfig{Sinks: []config.SinkConfig{{Type: "nop"}}},
		API:      config.APIConfig{Addr: ":0"},
		Notifier: config.NotifierConfig{Type: "log"},
	}
}

func seedEvent(t *testing.T, svc *Service, eventID string, subs, reviewers int) {
	t.Helper()
	mem, ok := svc.Store.(*store.MemoryStore)
	require.True(t, ok)
	for i := 0; i < subs; i++ {
		mem.AddSubmission(model.Submission{
			ID:      eventID + "-s" + string(rune('a'+i)),
			EventID: eventID,
		})
	}
	for i := 0; i < reviewers; i++ {
		mem.AddReviewerProfile(model.ReviewerProfile{
			ReviewerID:     eventID + "-r" + string(rune('a'+i)),
			EventID:        eventID,
			MaxAssignments: 10,
			Available:      true,
		})
	}
}

func TestServiceDistributeEndToEnd(t *testing.T) {
	svc, err := New(testConfig(t))
	require.NoError(t, err)
	defer func() { require.NoError(t, svc.Close()) }()

	seedEvent(t, svc, "ev1", 2, 3)
	sum, err := svc.Distribute(context.Background(), engine.Request{EventID: "ev1"})
	require.NoError(t, err)
	assert.Equal(t, 4, sum.TotalAssignments)

	records, err := svc.Logs.Query(context.Background(), distlog.Query{EventID: "ev1"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, distlog.StatusCompleted, records[0].Status)
}

func TestServiceSerializesRunsPerEvent(t *testing.T) {
	svc, err := New(testConfig(t))
	require.NoError(t, err)
	defer func() { require.NoError(t, svc.Close()) }()

	seedEvent(t, svc, "ev1", 4, 4)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Distribute(context.Background(), engine.Request{EventID: "ev1"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Concurrent re-runs never duplicate a pair.
	assignments, err := svc.Store.Assignments(context.Background(), "ev1")
	require.NoError(t, err)
	seen := make(map[[2]string]bool)
	for _, a := range assignments {
		key := [2]string{a.SubmissionID, a.ReviewerID}
		assert.False(t, seen[key], "duplicate pair %v", key)
		seen[key] = true
	}
	assert.Len(t, assignments, 8)
}

func TestServiceRejectsBadNotifier(t *testing.T) {
	cfg := testConfig(t)
	cfg.Notifier = config.NotifierConfig{Type: "mqtt"}
	// No broker reachable: constructing the service must fail, not hang the
	// first distribution.
	_, err := New(cfg)
	assert.Error(t, err)
}
