package distribute

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symposia/revdist/core/distlog"
	"github.com/symposia/revdist/core/engine"
	"github.com/symposia/revdist/infra/logger"
)

type stubRunner struct {
	req engine.Request
	sum engine.Summary
	err error
}

func (s *stubRunner) Distribute(_ context.Context, req engine.Request) (engine.Summary, error) {
	s.req = req
	return s.sum, s.err
}

func TestDistributeHandlerSuccess(t *testing.T) {
	runner := &stubRunner{sum: engine.Summary{
		LogID:               "log-1",
		EventID:             "ev1",
		Seed:                "seed-1",
		TotalSubmissions:    3,
		TotalAssignments:    6,
		ConflictsDetected:   1,
		FallbackAssignments: 2,
	}}
	h := NewDistributeHandler(runner, logger.NopLogger{})

	body := `{"event_id":"ev1","submission_ids":["s1","s2"],"seed":"seed-1","operator_id":"op"}`
	req := httptest.NewRequest(http.MethodPost, "/api/distribute", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ev1", runner.req.EventID)
	assert.Equal(t, []string{"s1", "s2"}, runner.req.SubmissionIDs)
	assert.Equal(t, "op", runner.req.OperatorID)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "log-1", resp["distribution_log_id"])
	assert.Equal(t, float64(6), resp["total_assignments"])
	assert.Equal(t, float64(1), resp["conflicts_detected"])
	assert.Equal(t, float64(2), resp["fallback_assignments"])
}

func TestDistributeHandlerFatalErrors(t *testing.T) {
	for _, fatal := range []error{engine.ErrNoSubmissions, engine.ErrNoReviewers} {
		runner := &stubRunner{err: fatal, sum: engine.Summary{LogID: "log-2"}}
		h := NewDistributeHandler(runner, logger.NopLogger{})

		req := httptest.NewRequest(http.MethodPost, "/api/distribute", strings.NewReader(`{"event_id":"ev1"}`))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		require.Equal(t, http.StatusUnprocessableEntity, rr.Code, fatal.Error())
		var resp map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, false, resp["success"])
		assert.NotEmpty(t, resp["error"])
		// The log id is still reported so the failure can be inspected.
		assert.Equal(t, "log-2", resp["distribution_log_id"])
	}
}

func TestDistributeHandlerValidation(t *testing.T) {
	h := NewDistributeHandler(&stubRunner{}, logger.NopLogger{})

	req := httptest.NewRequest(http.MethodGet, "/api/distribute", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/distribute", strings.NewReader("{"))
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/distribute", strings.NewReader(`{}`))
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

type stubLogStore struct {
	query   distlog.Query
	records []distlog.Record
}

func (s *stubLogStore) Append(context.Context, distlog.Record) error { return nil }
func (s *stubLogStore) Query(_ context.Context, q distlog.Query) ([]distlog.Record, error) {
	s.query = q
	return s.records, nil
}
func (s *stubLogStore) Close() error { return nil }

func TestLogHandlerAuth(t *testing.T) {
	h := NewLogHandler(&stubLogStore{}, "secret")

	req := httptest.NewRequest(http.MethodGet, "/api/distribution/logs", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/distribution/logs", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestLogHandlerFilters(t *testing.T) {
	store := &stubLogStore{records: []distlog.Record{{ID: "log-1", EventID: "ev1"}}}
	h := NewLogHandler(store, "")

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	req := httptest.NewRequest(http.MethodGet,
		"/api/distribution/logs?event_id=ev1&reviewer_id=r1&status=completed&start="+start.Format(time.RFC3339), nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ev1", store.query.EventID)
	assert.Equal(t, "r1", store.query.ReviewerID)
	assert.Equal(t, distlog.StatusCompleted, store.query.Status)
	assert.True(t, store.query.Start.Equal(start))

	var records []distlog.Record
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "log-1", records[0].ID)
}
