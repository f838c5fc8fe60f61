package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Every statement is idempotent so the
// full list is replayed on each open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := backfillUnknownBranches(db); err != nil {
		return fmt.Errorf("backfilling branches: %w", err)
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS time_entries (
		date       TEXT NOT NULL,
		project    TEXT NOT NULL,
		branch     TEXT NOT NULL DEFAULT '',
		minutes    REAL NOT NULL DEFAULT 0 CHECK(minutes >= 0),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (date, project, branch)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_time_entries_date ON time_entries(date)`,
	`CREATE INDEX IF NOT EXISTS idx_time_entries_project ON time_entries(project)`,
}

// backfillUnknownBranches moves rows written before branch tracking existed
// onto the "unknown" branch, merging into an existing unknown row when one
// is already present for the same date and project.
func backfillUnknownBranches(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning backfill: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`UPDATE time_entries AS u
		SET minutes = u.minutes + (
			SELECT l.minutes FROM time_entries l
			WHERE l.date = u.date AND l.project = u.project AND l.branch = ''
		)
		WHERE u.branch = 'unknown' AND EXISTS (
			SELECT 1 FROM time_entries l
			WHERE l.date = u.date AND l.project = u.project AND l.branch = ''
		)`); err != nil {
		return fmt.Errorf("merging legacy rows: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM time_entries
		WHERE branch = '' AND EXISTS (
			SELECT 1 FROM time_entries u
			WHERE u.date = time_entries.date AND u.project = time_entries.project AND u.branch = 'unknown'
		)`); err != nil {
		return fmt.Errorf("deleting merged legacy rows: %w", err)
	}
	if _, err := tx.Exec(`UPDATE time_entries SET branch = 'unknown' WHERE branch = ''`); err != nil {
		return fmt.Errorf("renaming legacy rows: %w", err)
	}
	return tx.Commit()
}
