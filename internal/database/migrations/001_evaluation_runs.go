package migrations

import (
	"database/sql"
)

func init() {
	Register(Migration{
		Version: 1,
		Name:    "evaluation_runs",
		Up:      evaluationRuns,
	})
}

func evaluationRuns(db *sql.DB) error {
	return execAll(db, []string{
		`CREATE TABLE IF NOT EXISTS evaluation_runs (
			id TEXT PRIMARY KEY,
			detector TEXT NOT NULL,
			mode TEXT NOT NULL CHECK(mode IN ('detection', 'calendar')),
			filter TEXT NOT NULL DEFAULT '',
			total_tests INTEGER NOT NULL,
			passed_tests INTEGER NOT NULL,
			failed_tests INTEGER NOT NULL,
			average_score REAL NOT NULL,
			calendar_ready INTEGER NOT NULL DEFAULT 0,
			average_readiness REAL NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_evaluation_runs_created ON evaluation_runs(created_at DESC)`,
	})
}
