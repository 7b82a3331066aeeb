package results

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/zzkhangg/entity-resolution-mini-project/internal/candidates"
)

// Store manages run persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the results database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("results database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure results directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// CreateRun inserts a new run of the given kind. Params is serialized
// to JSON alongside the run for later inspection; nil params is fine.
func (s *Store) CreateRun(ctx context.Context, kind string, params any) (*Run, error) {
	paramsJSON := ""
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("marshal run params: %w", err)
		}
		paramsJSON = string(data)
	}

	run := &Run{
		ID:         uuid.NewString(),
		Kind:       kind,
		CreatedAt:  time.Now().UTC(),
		ParamsJSON: paramsJSON,
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO runs (id, kind, created_at, params_json) VALUES (?, ?, ?, ?)`,
		run.ID,
		run.Kind,
		run.CreatedAt.Format(time.RFC3339Nano),
		nullableString(run.ParamsJSON),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// FinishRun marks a run completed and records its metrics snapshot.
func (s *Store) FinishRun(ctx context.Context, runID string, metrics any) error {
	metricsJSON := ""
	if metrics != nil {
		data, err := json.Marshal(metrics)
		if err != nil {
			return fmt.Errorf("marshal run metrics: %w", err)
		}
		metricsJSON = string(data)
	}

	res, err := s.db.ExecContext(
		ctx,
		`UPDATE runs SET completed_at = ?, metrics_json = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano),
		nullableString(metricsJSON),
		runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return nil
}

// GetRun fetches a run by id. Returns nil when the run does not exist.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListRuns returns all runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]*Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// LatestRun returns the newest run of the given kind, or nil when no
// such run exists.
func (s *Store) LatestRun(ctx context.Context, kind string) (*Run, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+runColumns+` FROM runs WHERE kind = ? ORDER BY created_at DESC LIMIT 1`,
		kind,
	)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest run: %w", err)
	}
	return run, nil
}

// InsertCandidates stores the ranked candidate pairs for a run in a
// single transaction.
func (s *Store) InsertCandidates(ctx context.Context, runID string, pairs []candidates.Pair) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin candidates tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(
		ctx,
		`INSERT INTO candidate_pairs (run_id, source_id, target_id, rank, score, source_text, target_text)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare candidates insert: %w", err)
	}
	defer stmt.Close()

	for _, pair := range pairs {
		if _, err := stmt.ExecContext(ctx, runID, pair.SourceID, pair.TargetID, pair.Rank, pair.Score, pair.SourceText, pair.TargetText); err != nil {
			return fmt.Errorf("insert candidate %s/%s: %w", pair.SourceID, pair.TargetID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit candidates: %w", err)
	}
	return nil
}

// CandidatesForRun returns the stored candidates for a run ordered by
// source id and rank.
func (s *Store) CandidatesForRun(ctx context.Context, runID string) ([]candidates.Pair, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT source_id, target_id, rank, score, source_text, target_text
         FROM candidate_pairs WHERE run_id = ? ORDER BY source_id, rank`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var pairs []candidates.Pair
	for rows.Next() {
		var pair candidates.Pair
		if err := rows.Scan(&pair.SourceID, &pair.TargetID, &pair.Rank, &pair.Score, &pair.SourceText, &pair.TargetText); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		pairs = append(pairs, pair)
	}
	return pairs, rows.Err()
}

// InsertFinalLabels stores the final labeled decisions for a run in a
// single transaction.
func (s *Store) InsertFinalLabels(ctx context.Context, runID string, labels []FinalLabel) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin labels tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(
		ctx,
		`INSERT INTO final_labels (run_id, source_id, target_id, rank, score, outcome, label, confidence, evidence, verified)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare labels insert: %w", err)
	}
	defer stmt.Close()

	for _, label := range labels {
		if _, err := stmt.ExecContext(ctx, runID, label.SourceID, label.TargetID, label.Rank, label.Score, label.Outcome, label.Label, label.Confidence, nullableString(label.Evidence), boolToInt(label.Verified)); err != nil {
			return fmt.Errorf("insert label %s/%s: %w", label.SourceID, label.TargetID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit labels: %w", err)
	}
	return nil
}

// FinalLabelsForRun returns the stored final labels for a run ordered
// by source id then target id.
func (s *Store) FinalLabelsForRun(ctx context.Context, runID string) ([]FinalLabel, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT source_id, target_id, rank, score, outcome, label, confidence, evidence, verified
         FROM final_labels WHERE run_id = ? ORDER BY source_id, rank, target_id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query final labels: %w", err)
	}
	defer rows.Close()

	var labels []FinalLabel
	for rows.Next() {
		var (
			label    FinalLabel
			evidence sql.NullString
			verified int
		)
		if err := rows.Scan(&label.SourceID, &label.TargetID, &label.Rank, &label.Score, &label.Outcome, &label.Label, &label.Confidence, &evidence, &verified); err != nil {
			return nil, fmt.Errorf("scan final label: %w", err)
		}
		label.Evidence = evidence.String
		label.Verified = verified != 0
		labels = append(labels, label)
	}
	return labels, rows.Err()
}

// RemoveRun deletes a run and its dependent rows.
func (s *Store) RemoveRun(ctx context.Context, runID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, runID)
	if err != nil {
		return false, fmt.Errorf("delete run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

const runColumns = "id, kind, created_at, completed_at, params_json, metrics_json"

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run          Run
		createdRaw   string
		completedRaw sql.NullString
		params       sql.NullString
		metrics      sql.NullString
	)
	if err := scanner.Scan(&run.ID, &run.Kind, &createdRaw, &completedRaw, &params, &metrics); err != nil {
		return nil, err
	}
	run.ParamsJSON = params.String
	run.MetricsJSON = metrics.String

	if created, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		run.CreatedAt = created
	}
	if completedRaw.Valid {
		if completed, err := time.Parse(time.RFC3339Nano, completedRaw.String); err == nil {
			run.CompletedAt = &completed
		}
	}
	return &run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
