// Package store persists report-run history to SQLite: one row per run,
// one per iteration, one per accepted final report. The durable transcript
// files are the primary record; the store is the queryable surface behind
// the history command.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"

	"rmreport/internal/loop"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS report_runs (
		id TEXT PRIMARY KEY,
		customer TEXT NOT NULL,
		provider TEXT NOT NULL,
		score_threshold INTEGER NOT NULL,
		max_iterations INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS report_iterations (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		idx INTEGER NOT NULL,
		draft TEXT NOT NULL,
		score INTEGER NOT NULL,
		feedback TEXT,
		backend_error TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (run_id) REFERENCES report_runs(id)
	);

	CREATE TABLE IF NOT EXISTS final_reports (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		final_draft TEXT NOT NULL,
		translated_draft TEXT,
		final_score INTEGER NOT NULL,
		iterations_run INTEGER NOT NULL,
		termination_reason TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (run_id) REFERENCES report_runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_iterations_run ON report_iterations(run_id);
	CREATE INDEX IF NOT EXISTS idx_runs_customer ON report_runs(customer);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Run describes one customer processing run.
type Run struct {
	ID             string
	Customer       string
	Provider       string
	ScoreThreshold int
	MaxIterations  int
	CreatedAt      time.Time
}

func (s *Store) SaveRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO report_runs (id, customer, provider, score_threshold, max_iterations, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, normalizeText(run.Customer), run.Provider, run.ScoreThreshold, run.MaxIterations, run.CreatedAt)
	return err
}

func (s *Store) SaveIteration(ctx context.Context, runID string, it loop.Iteration) error {
	id := fmt.Sprintf("%s_%d", runID, it.Index)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO report_iterations (id, run_id, idx, draft, score, feedback, backend_error, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, runID, it.Index, it.Draft, it.Score, it.Feedback, it.Error, it.Timestamp)
	return err
}

func (s *Store) SaveFinal(ctx context.Context, runID, translatedDraft string, res loop.Result) error {
	id := fmt.Sprintf("%s_final", runID)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO final_reports (id, run_id, final_draft, translated_draft, final_score, iterations_run, termination_reason) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, runID, res.FinalDraft, translatedDraft, res.FinalScore, res.IterationsRun, string(res.Reason))
	return err
}

// RunSummary is one row of the history listing.
type RunSummary struct {
	ID            string
	Customer      string
	Provider      string
	FinalScore    int
	IterationsRun int
	Reason        string
	CreatedAt     time.Time
}

// ListRuns returns run summaries ordered by most recent first. Runs without
// a final report (crashed mid-run) appear with zero score and empty reason.
func (s *Store) ListRuns(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.customer, r.provider,
			COALESCE(f.final_score, 0),
			COALESCE(f.iterations_run, 0),
			COALESCE(f.termination_reason, ''),
			r.created_at
		FROM report_runs r
		LEFT JOIN final_reports f ON f.run_id = r.id
		ORDER BY r.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []RunSummary
	for rows.Next() {
		var rs RunSummary
		if err := rows.Scan(&rs.ID, &rs.Customer, &rs.Provider, &rs.FinalScore, &rs.IterationsRun, &rs.Reason, &rs.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, rs)
	}

	return results, rows.Err()
}

// IterationRow is one stored generate/evaluate cycle.
type IterationRow struct {
	Index        int
	Draft        string
	Score        int
	Feedback     string
	BackendError string
	CreatedAt    time.Time
}

// GetIterations returns a run's iterations ordered by index.
func (s *Store) GetIterations(ctx context.Context, runID string) ([]IterationRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT idx, draft, score, feedback, COALESCE(backend_error, ''), created_at FROM report_iterations WHERE run_id = ? ORDER BY idx`,
		runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []IterationRow
	for rows.Next() {
		var ir IterationRow
		if err := rows.Scan(&ir.Index, &ir.Draft, &ir.Score, &ir.Feedback, &ir.BackendError, &ir.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, ir)
	}

	return results, rows.Err()
}

// HistoryStats summarises stored run history.
type HistoryStats struct {
	TotalRuns       int
	TotalIterations int
	ThresholdMet    int
	AverageScore    float64
}

// Stats returns summary statistics over all completed runs.
func (s *Store) Stats(ctx context.Context) (*HistoryStats, error) {
	stats := &HistoryStats{}

	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM report_runs`).Scan(&stats.TotalRuns)
	if err != nil {
		return nil, err
	}

	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM report_iterations`).Scan(&stats.TotalIterations)
	if err != nil {
		return nil, err
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN termination_reason = ? THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(final_score), 0)
		FROM final_reports`, string(loop.ScoreMet)).Scan(&stats.ThresholdMet, &stats.AverageScore)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// Clear removes all stored history and returns the number of runs deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM report_iterations`); err != nil {
		return 0, err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM final_reports`); err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM report_runs`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) Close() error {
	return s.db.Close()
}

// normalizeText trims whitespace and applies Unicode NFC normalization so
// customer identities compare consistently.
func normalizeText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}
