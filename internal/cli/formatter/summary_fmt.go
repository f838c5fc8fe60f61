package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/codeclock/internal/server"
	"github.com/alexanderramin/codeclock/internal/summary"
)

const shareWidth = 16

// FormatReport renders the per-day, per-project and per-branch breakdown.
func FormatReport(r summary.Report) string {
	if r.Total <= 0 && len(r.ByProject) == 0 {
		return Dim("No coding time recorded.") + "\n"
	}

	var b strings.Builder
	section := func(title, keyHeader string, buckets []summary.Bucket) {
		rows := make([][]string, 0, len(buckets))
		for _, bk := range buckets {
			rows = append(rows, []string{bk.Key, FormatMinutes(bk.Minutes), RenderShare(bk.Minutes, r.Total, shareWidth)})
		}
		b.WriteString(Header(title))
		b.WriteString("\n")
		b.WriteString(RenderTable([]string{keyHeader, "TIME", "SHARE"}, rows, 1))
		b.WriteString("\n")
	}

	section("By project", "PROJECT", r.ByProject)
	section("By branch", "BRANCH", r.ByBranch)
	section("By day", "DATE", r.ByDay)
	fmt.Fprintf(&b, "%s %s\n", Dim("Total:"), Bold(FormatMinutes(r.Total)))
	return b.String()
}

// FormatEntries renders raw ledger rows from `codeclock search`.
func FormatEntries(entries []server.Entry) string {
	if len(entries) == 0 {
		return Dim("No matching entries.") + "\n"
	}
	rows := make([][]string, 0, len(entries))
	var total float64
	for _, e := range entries {
		rows = append(rows, []string{e.Date, e.Project, StyleBlue.Render(e.Branch), FormatMinutes(e.Minutes)})
		total += e.Minutes
	}
	return RenderTable([]string{"DATE", "PROJECT", "BRANCH", "TIME"}, rows, 3) +
		fmt.Sprintf("%s %s  %s\n", Dim("Total:"), Bold(FormatMinutes(total)), Dim(fmt.Sprintf("(%d entries)", len(entries))))
}

func FormatBranches(project string, branches []string) string {
	if len(branches) == 0 {
		return Dim(fmt.Sprintf("No branches recorded for %s.", project)) + "\n"
	}
	var b strings.Builder
	b.WriteString(Header(project))
	b.WriteString("\n")
	for _, br := range branches {
		fmt.Fprintf(&b, "  %s %s\n", Dim("•"), StyleBlue.Render(br))
	}
	return b.String()
}
