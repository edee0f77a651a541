package engine

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	runsTotal          *prometheus.CounterVec
	assignmentsCreated *prometheus.CounterVec
	conflictsDetected  prometheus.Counter
	quotaShortfalls    prometheus.Counter
	runDuration        *prometheus.HistogramVec
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, *prometheus.CounterVec, prometheus.Counter, prometheus.Counter, *prometheus.HistogramVec) {
	runs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "distribution_runs_total",
			Help: "Number of distribution runs by terminal status",
		},
		[]string{"status", "strategy"},
	)
	asn := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "distribution_assignments_total",
			Help: "Number of assignments created",
		},
		[]string{"strategy", "origin"},
	)
	conflicts := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "distribution_conflicts_total",
			Help: "Number of reviewers excluded by conflict-of-interest rules",
		},
	)
	shortfalls := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "distribution_quota_shortfalls_total",
			Help: "Number of reviewer slots left unfilled after fallback",
		},
	)
	dur := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "distribution_run_duration_seconds",
			Help:    "Duration of distribution runs",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"strategy"},
	)
	return runs, asn, conflicts, shortfalls, dur
}

func init() {
	runsTotal, assignmentsCreated, conflictsDetected, quotaShortfalls, runDuration = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers engine metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(runsTotal, assignmentsCreated, conflictsDetected, quotaShortfalls, runDuration)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	runsTotal, assignmentsCreated, conflictsDetected, quotaShortfalls, runDuration = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
