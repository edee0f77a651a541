package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/symposia/revdist/core/metrics"
)

// PromSink records assignment and run events in Prometheus metrics.
type PromSink struct {
	assignments *prometheus.CounterVec
	runs        *prometheus.CounterVec
	scores      *prometheus.HistogramVec
}

// NewPromSink registers assignment metrics on the default Prometheus
// registerer. The Prometheus server should be started separately.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	assignments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assignment_events_total",
		Help: "Total number of assignment events",
	}, []string{"event_id", "strategy", "fallback"})
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "distribution_run_events_total",
		Help: "Total number of finished distribution runs",
	}, []string{"event_id", "strategy", "failed"})
	scores := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "assignment_score",
		Help:    "Suitability score of created assignments",
		Buckets: prometheus.LinearBuckets(0, 0.1, 11),
	}, []string{"strategy"})

	if err := reg.Register(assignments); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			assignments = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(runs); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			runs = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(scores); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			scores = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}

	return &PromSink{assignments: assignments, runs: runs, scores: scores}, nil
}

// RecordAssignments increments the counter for each created assignment.
func (s *PromSink) RecordAssignments(records []coremetrics.AssignmentRecord) error {
	for _, r := range records {
		s.assignments.WithLabelValues(r.EventID, r.Strategy, strconv.FormatBool(r.Fallback)).Inc()
		s.scores.WithLabelValues(r.Strategy).Observe(r.Score)
	}
	return nil
}

// RecordRun increments the run counter for the finished run.
func (s *PromSink) RecordRun(rec coremetrics.RunRecord) error {
	s.runs.WithLabelValues(rec.EventID, rec.Strategy, strconv.FormatBool(rec.Failed)).Inc()
	return nil
}
