package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/symposia/revdist/core/model"
)

// SQLiteStore persists the domain model to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS distribution_configs (
    event_id TEXT PRIMARY KEY,
    config TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS submissions (
    id TEXT PRIMARY KEY,
    event_id TEXT NOT NULL,
    author_id TEXT,
    attributes TEXT,
    seq INTEGER
);
CREATE TABLE IF NOT EXISTS reviewer_profiles (
    reviewer_id TEXT NOT NULL,
    event_id TEXT NOT NULL,
    max_assignments INTEGER NOT NULL,
    current_load INTEGER NOT NULL DEFAULT 0,
    available INTEGER NOT NULL DEFAULT 1,
    institution TEXT,
    excluded_authors TEXT,
    excluded_institutions TEXT,
    seq INTEGER,
    PRIMARY KEY (reviewer_id, event_id)
);
CREATE TABLE IF NOT EXISTS reviewer_preferences (
    reviewer_id TEXT NOT NULL,
    event_id TEXT NOT NULL,
    category TEXT NOT NULL,
    affinity INTEGER NOT NULL,
    PRIMARY KEY (reviewer_id, event_id, category)
);
CREATE TABLE IF NOT EXISTS assignments (
    id TEXT PRIMARY KEY,
    submission_id TEXT NOT NULL,
    reviewer_id TEXT NOT NULL,
    event_id TEXT NOT NULL,
    deadline INTEGER,
    completed INTEGER NOT NULL DEFAULT 0,
    distribution TEXT NOT NULL,
    distributed_at INTEGER NOT NULL,
    operator_id TEXT,
    notes TEXT,
    fallback INTEGER NOT NULL DEFAULT 0,
    reevaluate INTEGER NOT NULL DEFAULT 0,
    UNIQUE (submission_id, reviewer_id)
);
`

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// InsertSubmission writes a submission row. Used by intake tooling and tests.
func (s *SQLiteStore) InsertSubmission(ctx context.Context, sub model.Submission) error {
	attrs, err := json.Marshal(sub.Attributes)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO submissions (id, event_id, author_id, attributes, seq)
         VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM submissions))`,
		sub.ID, sub.EventID, sub.AuthorID, string(attrs))
	return err
}

// InsertReviewerProfile writes a reviewer profile row.
func (s *SQLiteStore) InsertReviewerProfile(ctx context.Context, p model.ReviewerProfile) error {
	authors, err := json.Marshal(p.ExcludedAuthors)
	if err != nil {
		return err
	}
	insts, err := json.Marshal(p.ExcludedInstitutions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reviewer_profiles
         (reviewer_id, event_id, max_assignments, current_load, available, institution, excluded_authors, excluded_institutions, seq)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM reviewer_profiles))`,
		p.ReviewerID, p.EventID, p.MaxAssignments, p.CurrentLoad, boolToInt(p.Available),
		p.Institution, string(authors), string(insts))
	return err
}

// InsertPreference writes a reviewer preference row.
func (s *SQLiteStore) InsertPreference(ctx context.Context, p model.ReviewerPreference) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reviewer_preferences (reviewer_id, event_id, category, affinity) VALUES (?, ?, ?, ?)`,
		p.ReviewerID, p.EventID, p.Category, int(p.Affinity))
	return err
}

// Config implements Store.
func (s *SQLiteStore) Config(ctx context.Context, eventID string) (model.DistributionConfig, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT config FROM distribution_configs WHERE event_id = ?`, eventID).Scan(&data)
	if err == sql.ErrNoRows {
		return model.DistributionConfig{}, ErrNotFound
	}
	if err != nil {
		return model.DistributionConfig{}, err
	}
	var cfg model.DistributionConfig
	if err := json.Unmarshal([]byte(data), &cfg); err != nil {
		return model.DistributionConfig{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// SaveConfig implements Store.
func (s *SQLiteStore) SaveConfig(ctx context.Context, cfg model.DistributionConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO distribution_configs (event_id, config) VALUES (?, ?)
         ON CONFLICT (event_id) DO UPDATE SET config = excluded.config`,
		cfg.EventID, string(data))
	return err
}

// Submissions implements Store.
func (s *SQLiteStore) Submissions(ctx context.Context, eventID string, ids []string) ([]model.Submission, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT id, event_id, author_id, attributes FROM submissions WHERE event_id = ? AND id IN (`
	args := []any{eventID}
	for i, id := range ids {
		if i > 0 {
			query += ","
		}
		query += "?"
		args = append(args, id)
	}
	query += `) ORDER BY seq`
	return s.scanSubmissions(ctx, query, args...)
}

// PendingSubmissions implements Store. A submission is pending while no
// completed assignment references it.
func (s *SQLiteStore) PendingSubmissions(ctx context.Context, eventID string) ([]model.Submission, error) {
	query := `SELECT s.id, s.event_id, s.author_id, s.attributes FROM submissions s
        WHERE s.event_id = ?
          AND NOT EXISTS (SELECT 1 FROM assignments a WHERE a.submission_id = s.id AND a.completed = 1)
        ORDER BY s.seq`
	return s.scanSubmissions(ctx, query, eventID)
}

func (s *SQLiteStore) scanSubmissions(ctx context.Context, query string, args ...any) ([]model.Submission, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []model.Submission
	for rows.Next() {
		var sub model.Submission
		var authorID sql.NullString
		var attrs sql.NullString
		if err := rows.Scan(&sub.ID, &sub.EventID, &authorID, &attrs); err != nil {
			return nil, err
		}
		sub.AuthorID = authorID.String
		if attrs.Valid && attrs.String != "" {
			if err := json.Unmarshal([]byte(attrs.String), &sub.Attributes); err != nil {
				return nil, fmt.Errorf("unmarshal attributes: %w", err)
			}
		}
		res = append(res, sub)
	}
	return res, rows.Err()
}

// ReviewerProfiles implements Store.
func (s *SQLiteStore) ReviewerProfiles(ctx context.Context, eventID string) ([]model.ReviewerProfile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT reviewer_id, event_id, max_assignments, current_load, available, institution, excluded_authors, excluded_institutions
         FROM reviewer_profiles WHERE event_id = ? ORDER BY seq`, eventID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []model.ReviewerProfile
	for rows.Next() {
		var p model.ReviewerProfile
		var available int
		var institution, authors, insts sql.NullString
		if err := rows.Scan(&p.ReviewerID, &p.EventID, &p.MaxAssignments, &p.CurrentLoad,
			&available, &institution, &authors, &insts); err != nil {
			return nil, err
		}
		p.Available = available != 0
		p.Institution = institution.String
		if authors.Valid && authors.String != "" {
			if err := json.Unmarshal([]byte(authors.String), &p.ExcludedAuthors); err != nil {
				return nil, fmt.Errorf("unmarshal excluded authors: %w", err)
			}
		}
		if insts.Valid && insts.String != "" {
			if err := json.Unmarshal([]byte(insts.String), &p.ExcludedInstitutions); err != nil {
				return nil, fmt.Errorf("unmarshal excluded institutions: %w", err)
			}
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

// Preferences implements Store.
func (s *SQLiteStore) Preferences(ctx context.Context, eventID string) ([]model.ReviewerPreference, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT reviewer_id, event_id, category, affinity FROM reviewer_preferences WHERE event_id = ?`, eventID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []model.ReviewerPreference
	for rows.Next() {
		var p model.ReviewerPreference
		var affinity int
		if err := rows.Scan(&p.ReviewerID, &p.EventID, &p.Category, &affinity); err != nil {
			return nil, err
		}
		p.Affinity = model.AffinityLevel(affinity)
		res = append(res, p)
	}
	return res, rows.Err()
}

// Assignments implements Store.
func (s *SQLiteStore) Assignments(ctx context.Context, eventID string) ([]model.Assignment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, submission_id, reviewer_id, event_id, deadline, completed, distribution,
                distributed_at, operator_id, notes, fallback, reevaluate
         FROM assignments WHERE event_id = ?`, eventID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []model.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, rows.Err()
}

// SaveAssignments implements Store. Existing (submission, reviewer) pairs are
// left untouched.
func (s *SQLiteStore) SaveAssignments(ctx context.Context, assignments []model.Assignment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, a := range assignments {
		var deadline any
		if a.Deadline != nil {
			deadline = a.Deadline.Unix()
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO assignments
             (id, submission_id, reviewer_id, event_id, deadline, completed, distribution,
              distributed_at, operator_id, notes, fallback, reevaluate)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
             ON CONFLICT (submission_id, reviewer_id) DO NOTHING`,
			a.ID, a.SubmissionID, a.ReviewerID, a.EventID, deadline, boolToInt(a.Completed),
			a.Distribution.String(), a.DistributedAt.Unix(), a.OperatorID, a.Notes,
			boolToInt(a.Fallback), boolToInt(a.Reevaluate))
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// UpdateLoads implements Store.
func (s *SQLiteStore) UpdateLoads(ctx context.Context, eventID string, loads map[string]int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for reviewerID, load := range loads {
		if _, err := tx.ExecContext(ctx,
			`UPDATE reviewer_profiles SET current_load = ? WHERE reviewer_id = ? AND event_id = ?`,
			load, reviewerID, eventID); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func scanAssignment(rows *sql.Rows) (model.Assignment, error) {
	var a model.Assignment
	var deadline sql.NullInt64
	var completed, fallback, reevaluate int
	var distribution string
	var distributedAt int64
	var operatorID, notes sql.NullString
	if err := rows.Scan(&a.ID, &a.SubmissionID, &a.ReviewerID, &a.EventID, &deadline,
		&completed, &distribution, &distributedAt, &operatorID, &notes, &fallback, &reevaluate); err != nil {
		return model.Assignment{}, err
	}
	if deadline.Valid {
		t := unixTime(deadline.Int64)
		a.Deadline = &t
	}
	a.Completed = completed != 0
	if distribution == model.DistributionManual.String() {
		a.Distribution = model.DistributionManual
	} else {
		a.Distribution = model.DistributionAutomatic
	}
	a.DistributedAt = unixTime(distributedAt)
	a.OperatorID = operatorID.String
	a.Notes = notes.String
	a.Fallback = fallback != 0
	a.Reevaluate = reevaluate != 0
	return a, nil
}

func unixTime(v int64) time.Time { return time.Unix(v, 0).UTC() }

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
