package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunMode is the pipeline an evaluation run exercised.
type RunMode string

const (
	RunModeDetection RunMode = "detection"
	RunModeCalendar  RunMode = "calendar"
)

// DefaultRunListLimit caps ListRuns when no positive limit is given.
const DefaultRunListLimit = 20

// ErrRunNotFound is returned when no run has the requested id.
var ErrRunNotFound = errors.New("evaluation run not found")

// IsRunNotFound reports whether err is, or wraps, ErrRunNotFound.
func IsRunNotFound(err error) bool {
	return errors.Is(err, ErrRunNotFound)
}

// EvaluationRun is one persisted harness run.
type EvaluationRun struct {
	ID               string             `json:"id"`
	Detector         string             `json:"detector"`
	Mode             RunMode            `json:"mode"`
	Filter           string             `json:"filter,omitempty"`
	TotalTests       int                `json:"total_tests"`
	PassedTests      int                `json:"passed_tests"`
	FailedTests      int                `json:"failed_tests"`
	AverageScore     float64            `json:"average_score"`
	CalendarReady    int                `json:"calendar_ready"`
	AverageReadiness float64            `json:"average_readiness"`
	CreatedAt        time.Time          `json:"created_at"`
	Results          []EvaluationResult `json:"results,omitempty"`
}

// EvaluationResult is one case outcome within a run. Readiness is set for
// calendar runs only.
type EvaluationResult struct {
	TestName   string   `json:"test_name"`
	Difficulty string   `json:"difficulty"`
	Passed     bool     `json:"passed"`
	Score      float64  `json:"score"`
	Readiness  *float64 `json:"readiness,omitempty"`
	EventCount int      `json:"event_count"`
	Details    string   `json:"details,omitempty"`
}

// SaveRun stores a run and its results in one transaction. An empty ID gets
// a random UUID and a zero CreatedAt gets the current time.
func (d *DB) SaveRun(run *EvaluationRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	run.CreatedAt = run.CreatedAt.UTC()

	tx, err := d.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO evaluation_runs (
			id, detector, mode, filter, total_tests, passed_tests, failed_tests,
			average_score, calendar_ready, average_readiness, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID, run.Detector, run.Mode, run.Filter, run.TotalTests, run.PassedTests, run.FailedTests,
		run.AverageScore, run.CalendarReady, run.AverageReadiness, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save evaluation run: %w", err)
	}

	for i, res := range run.Results {
		_, err := tx.Exec(`
			INSERT INTO evaluation_results (
				run_id, position, test_name, difficulty, passed, score, readiness, event_count, details
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, run.ID, i, res.TestName, res.Difficulty, res.Passed, res.Score, res.Readiness, res.EventCount, res.Details)
		if err != nil {
			return fmt.Errorf("failed to save evaluation result %q: %w", res.TestName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit evaluation run: %w", err)
	}
	return nil
}

type runScanner interface {
	Scan(dest ...any) error
}

const runColumns = `id, detector, mode, filter, total_tests, passed_tests, failed_tests,
	average_score, calendar_ready, average_readiness, created_at`

func scanRun(scanner runScanner) (*EvaluationRun, error) {
	var run EvaluationRun
	err := scanner.Scan(
		&run.ID, &run.Detector, &run.Mode, &run.Filter, &run.TotalTests, &run.PassedTests, &run.FailedTests,
		&run.AverageScore, &run.CalendarReady, &run.AverageReadiness, &run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// GetRun loads a run with its results in case order.
func (d *DB) GetRun(id string) (*EvaluationRun, error) {
	run, err := scanRun(d.QueryRow(`SELECT `+runColumns+` FROM evaluation_runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get evaluation run: %w", err)
	}

	results, err := d.runResults(id)
	if err != nil {
		return nil, err
	}
	run.Results = results
	return run, nil
}

func (d *DB) runResults(runID string) ([]EvaluationResult, error) {
	rows, err := d.Query(`
		SELECT test_name, difficulty, passed, score, readiness, event_count, details
		FROM evaluation_results
		WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query evaluation results: %w", err)
	}
	defer rows.Close()

	var results []EvaluationResult
	for rows.Next() {
		var res EvaluationResult
		var readiness sql.NullFloat64
		if err := rows.Scan(&res.TestName, &res.Difficulty, &res.Passed, &res.Score, &readiness, &res.EventCount, &res.Details); err != nil {
			return nil, fmt.Errorf("failed to scan evaluation result: %w", err)
		}
		if readiness.Valid {
			res.Readiness = &readiness.Float64
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// ListRuns returns runs newest first, without their results.
func (d *DB) ListRuns(limit int) ([]*EvaluationRun, error) {
	if limit <= 0 {
		limit = DefaultRunListLimit
	}

	rows, err := d.Query(`SELECT `+runColumns+` FROM evaluation_runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluation runs: %w", err)
	}
	defer rows.Close()

	runs := []*EvaluationRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan evaluation run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// DeleteRun removes a run; its results go with it.
func (d *DB) DeleteRun(id string) error {
	result, err := d.Exec(`DELETE FROM evaluation_runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete evaluation run: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("run %s: %w", id, ErrRunNotFound)
	}
	return nil
}
