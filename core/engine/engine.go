package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/symposia/revdist/core/category"
	"github.com/symposia/revdist/core/distlog"
	"github.com/symposia/revdist/core/events"
	"github.com/symposia/revdist/core/logger"
	"github.com/symposia/revdist/core/metrics"
	"github.com/symposia/revdist/core/model"
	"github.com/symposia/revdist/core/store"
	"github.com/symposia/revdist/internal/eventbus"
)

// Engine runs the submission-to-reviewer distribution. One run is a single
// synchronous batch: store reads up front, all decisions in memory, store
// writes at the end. Concurrent runs for the same event must be serialized
// by the caller.
type Engine struct {
	store    store.Store
	detector ConflictDetector
	logger   logger.Logger

	mu       sync.Mutex
	logs     distlog.LogStore
	sink     metrics.MetricsSink
	bus      eventbus.EventBus
	notifier Notifier
}

// New creates an engine over the given store.
func New(st store.Store, log logger.Logger) (*Engine, error) {
	if st == nil || log == nil {
		return nil, fmt.Errorf("engine: nil parameter provided to New")
	}
	return &Engine{store: st, logger: log}, nil
}

// SetLogStore configures the store used to persist distribution logs.
func (e *Engine) SetLogStore(s distlog.LogStore) {
	e.mu.Lock()
	e.logs = s
	e.mu.Unlock()
}

// SetMetricsSink configures the sink used to record assignment metrics.
func (e *Engine) SetMetricsSink(s metrics.MetricsSink) {
	e.mu.Lock()
	e.sink = s
	e.mu.Unlock()
}

// SetEventBus configures the bus on which run events are published.
func (e *Engine) SetEventBus(b eventbus.EventBus) {
	e.mu.Lock()
	e.bus = b
	e.mu.Unlock()
}

// SetNotifier configures the component notified after successful runs.
func (e *Engine) SetNotifier(n Notifier) {
	e.mu.Lock()
	e.notifier = n
	e.mu.Unlock()
}

// Close releases resources held by the engine.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.bus != nil {
		e.bus.Close()
	}
	if e.logs != nil {
		_ = e.logs.Close()
	}
	return nil
}

// runState accumulates the working set of a single run.
type runState struct {
	rctx     *RunContext
	profiles []model.ReviewerProfile
	prefs    map[string]map[string]model.AffinityLevel
	pairs    map[[2]string]bool
	ranker   Ranker
	rec      *distlog.Record
	sum      *Summary
	operator string
	created  []model.Assignment
	records  []metrics.AssignmentRecord
}

// Distribute runs one distribution for the event. The log record is always
// finalized exactly once, whether the run completes or fails.
func (e *Engine) Distribute(ctx context.Context, req Request) (sum Summary, err error) {
	if req.EventID == "" {
		return Summary{}, fmt.Errorf("engine: event id is required")
	}
	seed := req.Seed
	if seed == "" {
		seed = uuid.NewString()
	}
	rec := &distlog.Record{
		ID:        uuid.NewString(),
		EventID:   req.EventID,
		Status:    distlog.StatusRunning,
		Seed:      seed,
		StartedAt: time.Now(),
	}
	sum = Summary{LogID: rec.ID, EventID: req.EventID, Seed: seed}
	defer func() { e.finalize(rec, err) }()
	err = e.run(ctx, req, rec, &sum)
	return sum, err
}

func (e *Engine) run(ctx context.Context, req Request, rec *distlog.Record, sum *Summary) error {
	cfg, err := e.loadConfig(ctx, req.EventID)
	if err != nil {
		return err
	}
	rec.Strategy = cfg.Strategy.String()

	subs, err := e.resolveSubmissions(ctx, req)
	if err != nil {
		return fmt.Errorf("engine: load submissions: %w", err)
	}
	if len(subs) == 0 {
		return ErrNoSubmissions
	}

	profiles, err := e.store.ReviewerProfiles(ctx, req.EventID)
	if err != nil {
		return fmt.Errorf("engine: load reviewer profiles: %w", err)
	}
	loads := make(map[string]int, len(profiles))
	for _, p := range profiles {
		loads[p.ReviewerID] = p.CurrentLoad
	}
	rctx := &RunContext{
		Config: cfg,
		Loads:  loads,
		Rand:   rand.New(rand.NewSource(seedSource(rec.Seed))),
		Now:    time.Now(),
	}
	spare := 0
	for _, p := range profiles {
		if rctx.hasCapacity(p) {
			spare++
		}
	}
	if spare == 0 {
		return ErrNoReviewers
	}

	prefs, err := e.store.Preferences(ctx, req.EventID)
	if err != nil {
		return fmt.Errorf("engine: load reviewer preferences: %w", err)
	}
	existing, err := e.store.Assignments(ctx, req.EventID)
	if err != nil {
		return fmt.Errorf("engine: load assignments: %w", err)
	}
	pairs := make(map[[2]string]bool, len(existing))
	for _, a := range existing {
		pairs[[2]string{a.SubmissionID, a.ReviewerID}] = true
	}

	rec.TotalSubmissions = len(subs)
	rec.TotalReviewers = spare
	sum.TotalSubmissions = len(subs)
	sum.TotalReviewers = spare
	e.publish(events.RunStartedEvent{
		EventID: req.EventID, LogID: rec.ID,
		Strategy: rec.Strategy, Submissions: len(subs),
	})
	e.logger.Infof("distributing %d submissions to %d reviewers using %s strategy",
		len(subs), spare, rec.Strategy)

	st := &runState{
		rctx:     rctx,
		profiles: profiles,
		prefs:    indexPreferences(prefs),
		pairs:    pairs,
		ranker:   rankerFor(cfg.Strategy),
		rec:      rec,
		sum:      sum,
		operator: req.OperatorID,
	}
	for _, sub := range subs {
		if cerr := ctx.Err(); cerr != nil {
			return fmt.Errorf("engine: run cancelled: %w", cerr)
		}
		rec.Details.Submissions = append(rec.Details.Submissions, e.distributeOne(st, sub))
	}

	if err := e.store.SaveAssignments(ctx, st.created); err != nil {
		return fmt.Errorf("engine: persist assignments: %w", err)
	}
	if err := e.store.UpdateLoads(ctx, req.EventID, loads); err != nil {
		return fmt.Errorf("engine: flush reviewer loads: %w", err)
	}
	rec.Details.Balance = loadBalance(loads)
	e.recordAssignments(st.records)
	return nil
}

// distributeOne assigns reviewers to a single submission and returns the
// audit detail explaining every decision.
func (e *Engine) distributeOne(st *runState, sub model.Submission) distlog.SubmissionDetail {
	cat := category.Normalize(sub.Category())
	detail := distlog.SubmissionDetail{SubmissionID: sub.ID, Category: cat}

	// Candidates in profile insertion order; conflicts are counted whether
	// or not fallback later fills the quota.
	var candidates []Candidate
	for _, p := range st.profiles {
		if e.detector.Conflicted(sub, p, st.rctx.Config) {
			detail.Conflicts++
			st.rec.ConflictsDetected++
			st.sum.ConflictsDetected++
			conflictsDetected.Inc()
			e.publish(events.ConflictEvent{EventID: sub.EventID, SubmissionID: sub.ID, ReviewerID: p.ReviewerID})
			continue
		}
		affinity, has := st.prefs[p.ReviewerID][cat]
		candidates = append(candidates, Candidate{Profile: p, Affinity: affinity, HasPreference: has})
	}

	var eligible []Candidate
	for _, c := range candidates {
		if st.rctx.hasCapacity(c.Profile) {
			eligible = append(eligible, c)
		}
	}
	detail.Candidates = len(eligible)

	need := st.rctx.Config.ReviewersPerSubmission
	taken := make(map[string]bool)
	for _, c := range st.ranker.Rank(sub, cat, eligible, st.rctx) {
		if need == 0 {
			break
		}
		id := c.Profile.ReviewerID
		if taken[id] {
			continue
		}
		if st.pairs[[2]string{sub.ID, id}] {
			// The pair already exists from an earlier run: it satisfies the
			// quota but creates nothing and increments no counter.
			taken[id] = true
			detail.Skipped = append(detail.Skipped, id)
			need--
			continue
		}
		e.commit(st, sub, c, false, &detail)
		taken[id] = true
		need--
	}

	if need > 0 && st.rctx.Config.FallbackToRandom {
		for _, c := range fallbackCandidates(candidates, st.rctx, taken) {
			if need == 0 {
				break
			}
			id := c.Profile.ReviewerID
			if st.pairs[[2]string{sub.ID, id}] {
				taken[id] = true
				continue
			}
			e.commit(st, sub, c, true, &detail)
			st.rec.FallbackAssignments++
			st.sum.FallbackAssignments++
			e.publish(events.FallbackEvent{EventID: sub.EventID, SubmissionID: sub.ID, ReviewerID: id})
			taken[id] = true
			need--
		}
	}

	if need > 0 {
		detail.Shortfall = need
		st.rec.FailedAssignments += need
		st.sum.FailedAssignments += need
		quotaShortfalls.Add(float64(need))
		e.publish(events.ShortfallEvent{EventID: sub.EventID, SubmissionID: sub.ID, Missing: need})
		e.logger.Warnf("submission %s short by %d reviewers after fallback", sub.ID, need)
	}
	return detail
}

// commit records one new assignment in the run's working set and bumps the
// reviewer's in-memory load so later submissions see updated availability.
func (e *Engine) commit(st *runState, sub model.Submission, c Candidate, fallback bool, detail *distlog.SubmissionDetail) {
	id := c.Profile.ReviewerID
	st.created = append(st.created, model.Assignment{
		ID:            uuid.NewString(),
		SubmissionID:  sub.ID,
		ReviewerID:    id,
		EventID:       sub.EventID,
		Distribution:  model.DistributionAutomatic,
		DistributedAt: st.rctx.Now,
		OperatorID:    st.operator,
		Fallback:      fallback,
	})
	st.pairs[[2]string{sub.ID, id}] = true
	st.rctx.Loads[id]++
	st.rec.TotalAssignments++
	st.sum.TotalAssignments++
	origin := "primary"
	if fallback {
		origin = "fallback"
	}
	assignmentsCreated.WithLabelValues(st.rec.Strategy, origin).Inc()
	if fallback {
		detail.Fallback = append(detail.Fallback, id)
	} else {
		detail.Assigned = append(detail.Assigned, id)
	}
	st.records = append(st.records, metrics.AssignmentRecord{
		EventID:      sub.EventID,
		LogID:        st.rec.ID,
		SubmissionID: sub.ID,
		ReviewerID:   id,
		Strategy:     st.rec.Strategy,
		Score:        c.Score,
		Fallback:     fallback,
		Time:         st.rctx.Now,
	})
}

// loadConfig returns the event's configuration, creating it with the
// documented defaults on first use.
func (e *Engine) loadConfig(ctx context.Context, eventID string) (model.DistributionConfig, error) {
	cfg, err := e.store.Config(ctx, eventID)
	if errors.Is(err, store.ErrNotFound) {
		cfg = model.DefaultDistributionConfig(eventID)
		if serr := e.store.SaveConfig(ctx, cfg); serr != nil {
			return model.DistributionConfig{}, fmt.Errorf("engine: save default config: %w", serr)
		}
		e.logger.Infof("created default distribution config for event %s", eventID)
		return cfg, nil
	}
	if err != nil {
		return model.DistributionConfig{}, fmt.Errorf("engine: load config: %w", err)
	}
	if verr := cfg.Validate(); verr != nil {
		return model.DistributionConfig{}, fmt.Errorf("engine: invalid config for event %s: %w", eventID, verr)
	}
	return cfg, nil
}

func (e *Engine) resolveSubmissions(ctx context.Context, req Request) ([]model.Submission, error) {
	if len(req.SubmissionIDs) > 0 {
		return e.store.Submissions(ctx, req.EventID, req.SubmissionIDs)
	}
	return e.store.PendingSubmissions(ctx, req.EventID)
}

// finalize closes the run's log record exactly once and fans the outcome out
// to the log store, metrics sink, event bus and notifier.
func (e *Engine) finalize(rec *distlog.Record, runErr error) {
	now := time.Now()
	rec.CompletedAt = &now
	if runErr != nil {
		rec.Status = distlog.StatusFailed
		rec.Errors = append(rec.Errors, distlog.ErrorEntry{Time: now, Message: runErr.Error()})
	} else {
		rec.Status = distlog.StatusCompleted
	}
	runsTotal.WithLabelValues(string(rec.Status), rec.Strategy).Inc()
	runDuration.WithLabelValues(rec.Strategy).Observe(rec.Duration().Seconds())

	e.mu.Lock()
	logs, sink, notifier := e.logs, e.sink, e.notifier
	e.mu.Unlock()

	if logs != nil {
		if err := logs.Append(context.Background(), *rec); err != nil {
			e.logger.Errorf("distribution log append: %v", err)
		}
	}
	if rr, ok := sink.(metrics.RunRecorder); ok {
		if err := rr.RecordRun(metrics.RunRecord{
			EventID:             rec.EventID,
			LogID:               rec.ID,
			Strategy:            rec.Strategy,
			Failed:              runErr != nil,
			TotalSubmissions:    rec.TotalSubmissions,
			TotalAssignments:    rec.TotalAssignments,
			ConflictsDetected:   rec.ConflictsDetected,
			FallbackAssignments: rec.FallbackAssignments,
			FailedAssignments:   rec.FailedAssignments,
			Duration:            rec.Duration(),
			Time:                now,
		}); err != nil {
			e.logger.Errorf("run metrics error: %v", err)
		}
	}
	e.publish(events.RunCompletedEvent{
		EventID: rec.EventID, LogID: rec.ID,
		Failed: runErr != nil, Assignments: rec.TotalAssignments,
	})
	if runErr == nil && notifier != nil {
		if err := notifier.RunCompleted(context.Background(), rec.EventID, rec.ID); err != nil {
			// Notification failures never roll back the distribution.
			e.logger.Errorf("run notification failed: %v", err)
		}
	}
	if runErr != nil {
		e.logger.Warnf("run %s failed after %s: %v", rec.ID, rec.Duration(), runErr)
	} else {
		e.logger.Infof("run %s completed: %d assignments, %d conflicts, %d fallback, %d unfilled",
			rec.ID, rec.TotalAssignments, rec.ConflictsDetected, rec.FallbackAssignments, rec.FailedAssignments)
	}
}

func (e *Engine) recordAssignments(records []metrics.AssignmentRecord) {
	e.mu.Lock()
	sink := e.sink
	e.mu.Unlock()
	if sink == nil || len(records) == 0 {
		return
	}
	if err := sink.RecordAssignments(records); err != nil {
		e.logger.Errorf("assignment metrics error: %v", err)
	}
}

func (e *Engine) publish(ev eventbus.Event) {
	e.mu.Lock()
	bus := e.bus
	e.mu.Unlock()
	if bus != nil {
		bus.Publish(ev)
	}
}

func indexPreferences(prefs []model.ReviewerPreference) map[string]map[string]model.AffinityLevel {
	idx := make(map[string]map[string]model.AffinityLevel)
	for _, p := range prefs {
		byCat, ok := idx[p.ReviewerID]
		if !ok {
			byCat = make(map[string]model.AffinityLevel)
			idx[p.ReviewerID] = byCat
		}
		byCat[category.Normalize(p.Category)] = p.Affinity
	}
	return idx
}
