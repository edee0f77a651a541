package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/symposia/revdist/core/metrics"
	"github.com/symposia/revdist/infra/logger"
)

// InfluxSink writes assignment events to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordAssignments writes each created assignment as a point.
func (s *InfluxSink) RecordAssignments(records []coremetrics.AssignmentRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, r := range records {
		p := write.NewPointWithMeasurement("assignment_created").
			AddTag("event_id", r.EventID).
			AddTag("reviewer_id", r.ReviewerID).
			AddTag("strategy", r.Strategy).
			AddTag("fallback", strconv.FormatBool(r.Fallback)).
			AddTag("log_id", r.LogID).
			AddField("submission_id", r.SubmissionID).
			AddField("score", r.Score).
			SetTime(r.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordRunEvent writes one per-decision run event forwarded off the bus.
func (s *InfluxSink) RecordRunEvent(ev coremetrics.RunEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("run_event").
		AddTag("event_id", ev.EventID).
		AddTag("kind", ev.Kind)
	if ev.ReviewerID != "" {
		p = p.AddTag("reviewer_id", ev.ReviewerID)
	}
	p = p.AddField("submission_id", ev.SubmissionID).
		AddField("missing", ev.Missing).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordRun persists the summary of a finished distribution run.
func (s *InfluxSink) RecordRun(rec coremetrics.RunRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("distribution_run").
		AddTag("event_id", rec.EventID).
		AddTag("strategy", rec.Strategy).
		AddTag("failed", strconv.FormatBool(rec.Failed)).
		AddTag("log_id", rec.LogID).
		AddField("total_submissions", rec.TotalSubmissions).
		AddField("total_assignments", rec.TotalAssignments).
		AddField("conflicts_detected", rec.ConflictsDetected).
		AddField("fallback_assignments", rec.FallbackAssignments).
		AddField("failed_assignments", rec.FailedAssignments).
		AddField("duration_ms", rec.Duration.Milliseconds()).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying InfluxDB client.
func (s *InfluxSink) Close() {
	s.client.Close()
}
