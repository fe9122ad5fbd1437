package migrations

import (
	"database/sql"
)

func init() {
	Register(Migration{
		Version: 2,
		Name:    "evaluation_results",
		Up:      evaluationResults,
	})
}

func evaluationResults(db *sql.DB) error {
	return execAll(db, []string{
		`CREATE TABLE IF NOT EXISTS evaluation_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			test_name TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			passed BOOLEAN NOT NULL,
			score REAL NOT NULL,
			readiness REAL,
			event_count INTEGER NOT NULL,
			details TEXT NOT NULL DEFAULT '',
			FOREIGN KEY(run_id) REFERENCES evaluation_runs(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_evaluation_results_run ON evaluation_results(run_id, position)`,
	})
}
