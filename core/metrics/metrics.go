// Package metrics defines the observability records produced by the
// distribution engine and the sink interface used to export them.
package metrics

import "time"

// AssignmentRecord represents one created assignment to be recorded.
type AssignmentRecord struct {
	EventID      string
	LogID        string
	SubmissionID string
	ReviewerID   string
	Strategy     string
	Score        float64
	Fallback     bool
	Time         time.Time
}

// RunRecord summarizes a finished distribution run.
type RunRecord struct {
	EventID             string
	LogID               string
	Strategy            string
	Failed              bool
	TotalSubmissions    int
	TotalAssignments    int
	ConflictsDetected   int
	FallbackAssignments int
	FailedAssignments   int
	Duration            time.Duration
	Time                time.Time
}

// Kinds of per-decision run events forwarded off the event bus.
const (
	RunEventConflict  = "conflict"
	RunEventFallback  = "fallback"
	RunEventShortfall = "shortfall"
)

// RunEvent is one notable decision inside a run: a reviewer excluded by the
// conflict rules, a fallback assignment, or an unfilled quota.
type RunEvent struct {
	EventID      string
	SubmissionID string
	ReviewerID   string
	Kind         string
	Missing      int
	Time         time.Time
}

// MetricsSink records distribution results for observability purposes.
type MetricsSink interface {
	RecordAssignments(records []AssignmentRecord) error
}

// RunRecorder optionally records per-run summaries.
type RunRecorder interface {
	RecordRun(rec RunRecord) error
}

// RunEventRecorder optionally records per-decision run events.
type RunEventRecorder interface {
	RecordRunEvent(ev RunEvent) error
}

// NopSink discards all records.
type NopSink struct{}

// RecordAssignments implements MetricsSink.
func (NopSink) RecordAssignments([]AssignmentRecord) error { return nil }

// RecordRun implements RunRecorder.
func (NopSink) RecordRun(RunRecord) error { return nil }

// RecordRunEvent implements RunEventRecorder.
func (NopSink) RecordRunEvent(RunEvent) error { return nil }
