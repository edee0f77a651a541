// Package distribute exposes the distribution engine over HTTP.
package distribute

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/symposia/revdist/core/engine"
	"github.com/symposia/revdist/core/logger"
)

// Runner triggers distribution runs. It is implemented by the application
// service, which serializes runs per event.
type Runner interface {
	Distribute(ctx context.Context, req engine.Request) (engine.Summary, error)
}

type distributeRequest struct {
	EventID       string   `json:"event_id"`
	SubmissionIDs []string `json:"submission_ids,omitempty"`
	Seed          string   `json:"seed,omitempty"`
	OperatorID    string   `json:"operator_id,omitempty"`
}

type distributeResponse struct {
	Success             bool   `json:"success"`
	Error               string `json:"error,omitempty"`
	DistributionLogID   string `json:"distribution_log_id,omitempty"`
	Seed                string `json:"seed,omitempty"`
	TotalSubmissions    int    `json:"total_submissions"`
	TotalAssignments    int    `json:"total_assignments"`
	ConflictsDetected   int    `json:"conflicts_detected"`
	FallbackAssignments int    `json:"fallback_assignments"`
	FailedAssignments   int    `json:"failed_assignments"`
}

// NewDistributeHandler returns an HTTP handler for POST /api/distribute.
func NewDistributeHandler(runner Runner, log logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req distributeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.EventID == "" {
			http.Error(w, "event_id is required", http.StatusBadRequest)
			return
		}

		sum, err := runner.Distribute(r.Context(), engine.Request{
			EventID:       req.EventID,
			SubmissionIDs: req.SubmissionIDs,
			Seed:          req.Seed,
			OperatorID:    req.OperatorID,
		})
		resp := distributeResponse{
			Success:             err == nil,
			DistributionLogID:   sum.LogID,
			Seed:                sum.Seed,
			TotalSubmissions:    sum.TotalSubmissions,
			TotalAssignments:    sum.TotalAssignments,
			ConflictsDetected:   sum.ConflictsDetected,
			FallbackAssignments: sum.FallbackAssignments,
			FailedAssignments:   sum.FailedAssignments,
		}
		status := http.StatusOK
		if err != nil {
			resp.Error = err.Error()
			switch {
			case errors.Is(err, engine.ErrNoSubmissions), errors.Is(err, engine.ErrNoReviewers):
				status = http.StatusUnprocessableEntity
			default:
				log.Errorf("distribution failed: %v", err)
				status = http.StatusInternalServerError
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Errorf("encode response: %v", err)
		}
	})
}
