package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/codeclock/internal/db"
	"github.com/alexanderramin/codeclock/internal/domain"
)

// SQLiteEntryRepo implements EntryRepo on the time_entries table.
type SQLiteEntryRepo struct {
	db db.DBTX
}

// NewSQLiteEntryRepo creates a repo over a *sql.DB or a transaction.
func NewSQLiteEntryRepo(conn db.DBTX) *SQLiteEntryRepo {
	return &SQLiteEntryRepo{db: conn}
}

func (r *SQLiteEntryRepo) Merge(ctx context.Context, e domain.TimeEntry) error {
	query := `INSERT INTO time_entries (date, project, branch, minutes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(date, project, branch) DO UPDATE SET
			minutes = minutes + excluded.minutes,
			updated_at = excluded.updated_at`
	now := nowUTC()
	_, err := r.db.ExecContext(ctx, query, e.Date, e.Project, e.Branch, e.Minutes, now, now)
	if err != nil {
		return fmt.Errorf("merging time entry: %w", err)
	}
	return nil
}

func (r *SQLiteEntryRepo) Get(ctx context.Context, key domain.EntryKey) (*domain.TimeEntry, error) {
	query := `SELECT date, project, branch, minutes FROM time_entries
		WHERE date = ? AND project = ? AND branch = ?`
	var e domain.TimeEntry
	err := r.db.QueryRowContext(ctx, query, key.Date, key.Project, key.Branch).
		Scan(&e.Date, &e.Project, &e.Branch, &e.Minutes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("time entry: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning time entry: %w", err)
	}
	return &e, nil
}

func (r *SQLiteEntryRepo) ListAll(ctx context.Context) ([]domain.TimeEntry, error) {
	query := `SELECT date, project, branch, minutes FROM time_entries ORDER BY rowid`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing time entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.TimeEntry
	for rows.Next() {
		var e domain.TimeEntry
		if err := rows.Scan(&e.Date, &e.Project, &e.Branch, &e.Minutes); err != nil {
			return nil, fmt.Errorf("scanning time entry row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating time entries: %w", err)
	}
	return entries, nil
}

func (r *SQLiteEntryRepo) DeleteByDate(ctx context.Context, date string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM time_entries WHERE date = ?`, date)
	if err != nil {
		return 0, fmt.Errorf("deleting entries for %s: %w", date, err)
	}
	return res.RowsAffected()
}

func (r *SQLiteEntryRepo) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM time_entries`)
	if err != nil {
		return 0, fmt.Errorf("deleting all entries: %w", err)
	}
	return res.RowsAffected()
}
