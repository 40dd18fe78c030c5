package storage

import (
	"database/sql"
	"fmt"
)

var migrations = []string{
	// Migration 1: run archive
	`CREATE TABLE IF NOT EXISTS runs (
		id               TEXT PRIMARY KEY,
		layout           TEXT NOT NULL,
		metric           TEXT NOT NULL,
		notified         INTEGER NOT NULL DEFAULT 0,
		callout_sent     INTEGER NOT NULL DEFAULT 0,
		total_mtd        REAL NOT NULL DEFAULT 0.0,
		started_at       DATETIME NOT NULL,
		duration_seconds REAL NOT NULL DEFAULT 0.0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);

	CREATE TABLE IF NOT EXISTS run_rows (
		run_id        TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position      INTEGER NOT NULL,
		account_id    TEXT NOT NULL,
		description   TEXT NOT NULL DEFAULT '',
		section       TEXT NOT NULL DEFAULT '',
		month_to_date REAL NOT NULL DEFAULT 0.0,
		yesterday     REAL NOT NULL DEFAULT 0.0,
		last_month    REAL NOT NULL DEFAULT 0.0,
		listed        INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (run_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_run_rows_account ON run_rows(account_id);`,
}

// runMigrations applies pending schema migrations.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("create migration table: %w", err)
	}

	var currentVersion int
	row := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("check migration version: %w", err)
	}

	for i := currentVersion; i < len(migrations); i++ {
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", i+1, err)
		}

		if _, err := tx.Exec(migrations[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("run migration %d: %w", i+1, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", i+1); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", i+1, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", i+1, err)
		}
	}

	return nil
}
