package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symposia/revdist/core/events"
	coremetrics "github.com/symposia/revdist/core/metrics"
	"github.com/symposia/revdist/internal/eventbus"
)

type eventSink struct {
	events chan coremetrics.RunEvent
}

func newEventSink() *eventSink {
	return &eventSink{events: make(chan coremetrics.RunEvent, 16)}
}

func (s *eventSink) RecordAssignments([]coremetrics.AssignmentRecord) error { return nil }
func (s *eventSink) RecordRunEvent(ev coremetrics.RunEvent) error {
	s.events <- ev
	return nil
}

func (s *eventSink) next(t *testing.T) coremetrics.RunEvent {
	t.Helper()
	select {
	case ev := <-s.events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for run event")
		return coremetrics.RunEvent{}
	}
}

func TestEventCollectorForwardsDecisions(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	sink := newEventSink()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartEventCollector(ctx, bus, sink)

	bus.Publish(events.ConflictEvent{EventID: "ev1", SubmissionID: "s1", ReviewerID: "r1"})
	ev := sink.next(t)
	assert.Equal(t, coremetrics.RunEventConflict, ev.Kind)
	assert.Equal(t, "r1", ev.ReviewerID)

	bus.Publish(events.FallbackEvent{EventID: "ev1", SubmissionID: "s1", ReviewerID: "r2"})
	ev = sink.next(t)
	assert.Equal(t, coremetrics.RunEventFallback, ev.Kind)
	assert.Equal(t, "r2", ev.ReviewerID)

	bus.Publish(events.ShortfallEvent{EventID: "ev1", SubmissionID: "s2", Missing: 2})
	ev = sink.next(t)
	assert.Equal(t, coremetrics.RunEventShortfall, ev.Kind)
	assert.Equal(t, 2, ev.Missing)
	assert.Equal(t, "s2", ev.SubmissionID)

	// Events outside the decision set are ignored.
	bus.Publish(events.RunStartedEvent{EventID: "ev1"})
	select {
	case ev := <-sink.events:
		t.Fatalf("unexpected event forwarded: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEventCollectorStopsOnCancel(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	sink := newEventSink()
	ctx, cancel := context.WithCancel(context.Background())

	StartEventCollector(ctx, bus, sink)
	cancel()

	require.Eventually(t, func() bool {
		bus.Publish(events.ConflictEvent{EventID: "ev1"})
		select {
		case <-sink.events:
			return false
		default:
			return true
		}
	}, 2*time.Second, 20*time.Millisecond, "collector kept forwarding after cancel")
}

func TestEventCollectorRequiresCapableSink(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	// A sink without RecordRunEvent never subscribes; publishing must not
	// panic or leak.
	StartEventCollector(context.Background(), bus, assignmentOnly{})
	bus.Publish(events.ConflictEvent{EventID: "ev1"})
}

type assignmentOnly struct{}

func (assignmentOnly) RecordAssignments([]coremetrics.AssignmentRecord) error { return nil }
