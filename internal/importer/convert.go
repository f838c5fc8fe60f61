package importer

import (
	"strings"

	"github.com/alexanderramin/codeclock/internal/domain"
)

// Convert turns validated rows into ledger entries. Rows without a branch
// are recorded under the unknown branch. Call Validate first.
func Convert(rows []LegacyEntry) []domain.TimeEntry {
	out := make([]domain.TimeEntry, 0, len(rows))
	for _, r := range rows {
		branch := domain.UnknownBranch
		if r.Branch != nil && strings.TrimSpace(*r.Branch) != "" {
			branch = *r.Branch
		}
		out = append(out, domain.TimeEntry{
			Date:    r.Date,
			Project: r.Project,
			Branch:  branch,
			Minutes: domain.RoundMinutes(r.TimeSpent),
		})
	}
	return out
}
