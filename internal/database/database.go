// Package database persists evaluation runs in SQLite.
package database

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/omriShneor/whatsapp_eventer/internal/database/migrations"
)

const memoryPath = ":memory:"

type DB struct {
	*sql.DB
}

func New(dbPath string) (*DB, error) {
	// WAL for concurrent readers, busy timeout so writers wait instead of
	// failing, and foreign keys for the results cascade.
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to :memory: is its own database.
	if dbPath == memoryPath {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrations.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DB{db}, nil
}

func (d *DB) Close() error {
	return d.DB.Close()
}
