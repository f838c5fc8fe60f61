package repository

import (
	"context"

	"github.com/alexanderramin/codeclock/internal/domain"
)

// EntryRepo persists aggregated time entries.
type EntryRepo interface {
	// Merge adds e.Minutes to the row for e.Key(), inserting it if needed.
	Merge(ctx context.Context, e domain.TimeEntry) error
	Get(ctx context.Context, key domain.EntryKey) (*domain.TimeEntry, error)
	// ListAll returns every row in insertion order.
	ListAll(ctx context.Context) ([]domain.TimeEntry, error)
	DeleteByDate(ctx context.Context, date string) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}
