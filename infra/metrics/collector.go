package metrics

import (
	"context"
	"time"

	"github.com/symposia/revdist/core/events"
	coremetrics "github.com/symposia/revdist/core/metrics"
	"github.com/symposia/revdist/internal/eventbus"
)

// StartEventCollector subscribes to the run event bus and forwards decision
// events to the sink. It stops when the context is canceled or the bus
// closes.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	rec, ok := sink.(coremetrics.RunEventRecorder)
	if !ok {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, open := <-sub:
				if !open {
					return
				}
				switch e := ev.(type) {
				case events.ConflictEvent:
					_ = rec.RecordRunEvent(coremetrics.RunEvent{
						EventID:      e.EventID,
						SubmissionID: e.SubmissionID,
						ReviewerID:   e.ReviewerID,
						Kind:         coremetrics.RunEventConflict,
						Time:         time.Now(),
					})
				case events.FallbackEvent:
					_ = rec.RecordRunEvent(coremetrics.RunEvent{
						EventID:      e.EventID,
						SubmissionID: e.SubmissionID,
						ReviewerID:   e.ReviewerID,
						Kind:         coremetrics.RunEventFallback,
						Time:         time.Now(),
					})
				case events.ShortfallEvent:
					_ = rec.RecordRunEvent(coremetrics.RunEvent{
						EventID:      e.EventID,
						SubmissionID: e.SubmissionID,
						Kind:         coremetrics.RunEventShortfall,
						Missing:      e.Missing,
						Time:         time.Now(),
					})
				}
			}
		}
	}()
}
