// Package importer reads legacy JSON exports of the time ledger.
package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/codeclock/internal/domain"
)

// Sink receives converted entries; *ledger.Ledger satisfies it.
type Sink interface {
	Import(ctx context.Context, entries []domain.TimeEntry) (int, error)
}

// ValidationError collects every problem found in an export.
type ValidationError struct {
	Errs []error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("import validation failed: %v", errors.Join(e.Errs...))
}

func (e *ValidationError) Unwrap() []error { return e.Errs }

// Run validates rows and merges them into sink in a single transaction.
func Run(ctx context.Context, sink Sink, rows []LegacyEntry) (int, error) {
	if errs := Validate(rows); len(errs) > 0 {
		return 0, &ValidationError{Errs: errs}
	}
	n, err := sink.Import(ctx, Convert(rows))
	if err != nil {
		return 0, fmt.Errorf("importing entries: %w", err)
	}
	return n, nil
}
