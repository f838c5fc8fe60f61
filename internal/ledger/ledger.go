// Package ledger holds the aggregated time entries. Rows are loaded from
// SQLite once at open and kept in memory; every mutation goes through a
// single lock and only touches the cache after the transaction commits, so
// readers never observe a row the database does not have.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/alexanderramin/codeclock/internal/db"
	"github.com/alexanderramin/codeclock/internal/domain"
	"github.com/alexanderramin/codeclock/internal/repository"
)

// MaxMinutes is the largest duration a single write may carry.
const MaxMinutes = 24 * 60

// ResetAllPhrase must be typed verbatim before a full reset.
const ResetAllPhrase = "DELETE ALL DATA"

var (
	// ErrImplausibleDuration marks a write rejected as a measurement error.
	ErrImplausibleDuration  = errors.New("implausible duration")
	ErrConfirmationRequired = errors.New("confirmation phrase required")
)

// CheckConfirmation returns ErrConfirmationRequired unless phrase matches
// ResetAllPhrase exactly.
func CheckConfirmation(phrase string) error {
	if phrase != ResetAllPhrase {
		return fmt.Errorf("type %q to delete everything: %w", ResetAllPhrase, ErrConfirmationRequired)
	}
	return nil
}

// Ledger is the cached, persistent store of TimeEntry rows.
type Ledger struct {
	uow    db.UnitOfWork
	logger *slog.Logger

	mu      sync.RWMutex
	entries []domain.TimeEntry
	index   map[domain.EntryKey]int
	adds    uint64
}

// Open loads every entry from repo into memory.
func Open(ctx context.Context, repo repository.EntryRepo, uow db.UnitOfWork, logger *slog.Logger) (*Ledger, error) {
	if logger == nil {
		logger = slog.Default()
	}
	rows, err := repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading ledger: %w", err)
	}
	l := &Ledger{uow: uow, logger: logger}
	l.replace(rows)
	return l, nil
}

// Add merges minutes into the row for (date of at, project, branch).
// Non-positive or implausibly large durations are logged and dropped with
// ErrImplausibleDuration; storage failures leave the cache untouched.
func (l *Ledger) Add(ctx context.Context, at time.Time, project, branch string, minutes float64) error {
	if branch == "" {
		branch = domain.UnknownBranch
	}
	rounded := domain.RoundMinutes(minutes)
	if minutes <= 0 || rounded <= 0 || rounded > MaxMinutes {
		l.logger.Warn("rejecting suspicious duration",
			"minutes", minutes, "project", project, "branch", branch)
		return fmt.Errorf("%.4f minutes for %s/%s: %w", minutes, project, branch, ErrImplausibleDuration)
	}

	e := domain.TimeEntry{Date: domain.LocalDate(at), Project: project, Branch: branch, Minutes: rounded}

	l.mu.Lock()
	defer l.mu.Unlock()

	err := l.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteEntryRepo(tx).Merge(ctx, e)
	})
	if err != nil {
		return fmt.Errorf("saving entry: %w", err)
	}
	l.mergeLocked(e)
	l.adds++
	l.logger.Debug("entry saved", "date", e.Date, "project", project, "branch", branch, "minutes", rounded)
	return nil
}

// Entries returns a copy of every row in insertion order.
func (l *Ledger) Entries() []domain.TimeEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.TimeEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Snapshot returns Entries together with the number of successful Add
// calls so far, read under one lock.
func (l *Ledger) Snapshot() ([]domain.TimeEntry, uint64) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.TimeEntry, len(l.entries))
	copy(out, l.entries)
	return out, l.adds
}

// ResetToday deletes every row dated today (local time of now).
func (l *Ledger) ResetToday(ctx context.Context, now time.Time) (int, error) {
	date := domain.LocalDate(now)

	l.mu.Lock()
	defer l.mu.Unlock()

	var n int64
	err := l.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		n, err = repository.NewSQLiteEntryRepo(tx).DeleteByDate(ctx, date)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("resetting today: %w", err)
	}

	kept := make([]domain.TimeEntry, 0, len(l.entries))
	for _, e := range l.entries {
		if e.Date != date {
			kept = append(kept, e)
		}
	}
	l.replace(kept)
	l.logger.Info("ledger reset for today", "date", date, "rows", n)
	return int(n), nil
}

// ResetAll deletes every row. Either the whole clear commits or nothing
// changes. Confirmation is the caller's job.
func (l *Ledger) ResetAll(ctx context.Context) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var n int64
	err := l.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		n, err = repository.NewSQLiteEntryRepo(tx).DeleteAll(ctx)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("resetting all data: %w", err)
	}
	l.replace(nil)
	l.logger.Info("ledger cleared", "rows", n)
	return int(n), nil
}

// Import merges entries in one transaction. Rows that fail the duration
// guard abort the whole import.
func (l *Ledger) Import(ctx context.Context, entries []domain.TimeEntry) (int, error) {
	prepared := make([]domain.TimeEntry, 0, len(entries))
	for i, e := range entries {
		m := domain.RoundMinutes(e.Minutes)
		if m <= 0 || m > MaxMinutes {
			return 0, fmt.Errorf("entry %d (%s %s/%s): %w", i, e.Date, e.Project, e.Branch, ErrImplausibleDuration)
		}
		if e.Branch == "" {
			e.Branch = domain.UnknownBranch
		}
		e.Minutes = m
		prepared = append(prepared, e)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	err := l.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := repository.NewSQLiteEntryRepo(tx)
		for _, e := range prepared {
			if err := repo.Merge(ctx, e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("importing entries: %w", err)
	}
	for _, e := range prepared {
		l.mergeLocked(e)
	}
	l.logger.Info("entries imported", "rows", len(prepared))
	return len(prepared), nil
}

// Query filters Search results. Empty fields match everything; dates are
// inclusive YYYY-MM-DD bounds; Project and Branch match case-insensitive
// substrings.
type Query struct {
	StartDate string
	EndDate   string
	Project   string
	Branch    string
}

func (l *Ledger) Search(q Query) []domain.TimeEntry {
	project := strings.ToLower(q.Project)
	branch := strings.ToLower(q.Branch)

	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []domain.TimeEntry
	for _, e := range l.entries {
		if q.StartDate != "" && e.Date < q.StartDate {
			continue
		}
		if q.EndDate != "" && e.Date > q.EndDate {
			continue
		}
		if project != "" && !strings.Contains(strings.ToLower(e.Project), project) {
			continue
		}
		if branch != "" && !strings.Contains(strings.ToLower(e.Branch), branch) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// BranchesByProject returns the sorted distinct branches recorded for project.
func (l *Ledger) BranchesByProject(project string) []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	for _, e := range l.entries {
		if e.Project == project && !seen[e.Branch] {
			seen[e.Branch] = true
			out = append(out, e.Branch)
		}
	}
	sort.Strings(out)
	return out
}

func (l *Ledger) mergeLocked(e domain.TimeEntry) {
	if i, ok := l.index[e.Key()]; ok {
		l.entries[i].Minutes += e.Minutes
		return
	}
	l.index[e.Key()] = len(l.entries)
	l.entries = append(l.entries, e)
}

func (l *Ledger) replace(rows []domain.TimeEntry) {
	l.entries = make([]domain.TimeEntry, 0, len(rows))
	l.index = make(map[domain.EntryKey]int, len(rows))
	for _, e := range rows {
		l.mergeLocked(e)
	}
}
