package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/codeclock/internal/domain"
	"github.com/alexanderramin/codeclock/internal/ledger"
)

// Validate checks every row and returns all problems found.
func Validate(rows []LegacyEntry) []error {
	var errs []error
	for i, r := range rows {
		prefix := fmt.Sprintf("entry[%d]", i)
		if r.Date == "" {
			errs = append(errs, fmt.Errorf("%s.date is required", prefix))
		} else if _, err := time.Parse(domain.DateLayout, r.Date); err != nil {
			errs = append(errs, fmt.Errorf("%s.date: invalid date format %q (expected YYYY-MM-DD)", prefix, r.Date))
		}
		if strings.TrimSpace(r.Project) == "" {
			errs = append(errs, fmt.Errorf("%s.project is required", prefix))
		}
		if r.TimeSpent <= 0 || r.TimeSpent > ledger.MaxMinutes {
			errs = append(errs, fmt.Errorf("%s.timeSpent %.2f out of range (0, %d]", prefix, r.TimeSpent, ledger.MaxMinutes))
		}
	}
	return errs
}
