package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/symposia/revdist/core/metrics"
)

type recordingSink struct {
	assignments []coremetrics.AssignmentRecord
	runs        []coremetrics.RunRecord
	err         error
}

func (s *recordingSink) RecordAssignments(records []coremetrics.AssignmentRecord) error {
	if s.err != nil {
		return s.err
	}
	s.assignments = append(s.assignments, records...)
	return nil
}

func (s *recordingSink) RecordRun(rec coremetrics.RunRecord) error {
	if s.err != nil {
		return s.err
	}
	s.runs = append(s.runs, rec)
	return nil
}

// assignmentOnlySink does not implement RunRecorder.
type assignmentOnlySink struct{ calls int }

func (s *assignmentOnlySink) RecordAssignments([]coremetrics.AssignmentRecord) error {
	s.calls++
	return nil
}

func TestMultiSinkFansOut(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	m := NewMultiSink(a, b)

	records := []coremetrics.AssignmentRecord{
		{EventID: "ev1", SubmissionID: "s1", ReviewerID: "r1", Strategy: "balanced", Time: time.Now()},
	}
	require.NoError(t, m.RecordAssignments(records))
	assert.Len(t, a.assignments, 1)
	assert.Len(t, b.assignments, 1)

	require.NoError(t, m.RecordRun(coremetrics.RunRecord{EventID: "ev1", LogID: "l1"}))
	assert.Len(t, a.runs, 1)
	assert.Len(t, b.runs, 1)
}

func TestMultiSinkReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")
	a := &recordingSink{err: boom}
	b := &recordingSink{}
	m := NewMultiSink(a, b)

	err := m.RecordAssignments([]coremetrics.AssignmentRecord{{EventID: "ev1"}})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, b.assignments, "second sink is not reached after an error")
}

func TestMultiSinkSkipsNonRunRecorders(t *testing.T) {
	plain := &assignmentOnlySink{}
	full := &recordingSink{}
	m := NewMultiSink(plain, full)

	require.NoError(t, m.RecordRun(coremetrics.RunRecord{EventID: "ev1"}))
	assert.Zero(t, plain.calls)
	assert.Len(t, full.runs, 1)
}
