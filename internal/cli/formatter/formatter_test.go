package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/alexanderramin/codeclock/internal/domain"
	"github.com/alexanderramin/codeclock/internal/server"
	"github.com/alexanderramin/codeclock/internal/summary"
)

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0m"},
		{-3, "0m"},
		{0.4, "<1m"},
		{5, "5m"},
		{59.6, "1h 00m"},
		{65, "1h 05m"},
		{1440, "24h 00m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatMinutes(tt.in), "%v", tt.in)
	}
}

func TestSince(t *testing.T) {
	now := time.Date(2024, 3, 13, 12, 0, 0, 0, time.Local)
	assert.Equal(t, "just now", Since(now.Add(-10*time.Second), now))
	assert.Equal(t, "5m ago", Since(now.Add(-5*time.Minute), now))
	assert.Equal(t, "2h 03m ago", Since(now.Add(-123*time.Minute), now))
}

func TestRenderShare(t *testing.T) {
	assert.Contains(t, RenderShare(1, 4, 8), " 25%")
	assert.Contains(t, RenderShare(5, 0, 8), "  0%")
	assert.Contains(t, RenderShare(9, 4, 8), "100%")
}

func TestRenderTable_RightAlign(t *testing.T) {
	out := RenderTable([]string{"NAME", "TIME"}, [][]string{{"api", "5m"}, {"web", "1h 05m"}}, 1)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 4)
	// Right-aligned cells end at the same column.
	assert.Equal(t, lipgloss.Width(lines[2]), lipgloss.Width(lines[3]))
	assert.True(t, strings.HasSuffix(lines[2], "5m"))
}

func TestRenderTable_Empty(t *testing.T) {
	assert.Empty(t, RenderTable(nil, nil))
}

func TestFormatStatus_Tracking(t *testing.T) {
	now := time.Date(2024, 3, 13, 12, 0, 0, 0, time.Local)
	started := now.Add(-12 * time.Minute)
	out := FormatStatus(server.StatusResponse{
		State:         domain.StateTracking,
		Active:        true,
		Project:       "api",
		Branch:        "feature-x",
		StartedAt:     &started,
		ProjectToday:  42,
		PendingWrites: 2,
		Totals:        summary.Totals{Today: 65, AllTime: 600},
	}, now)

	assert.Contains(t, out, "Tracking")
	assert.Contains(t, out, "api")
	assert.Contains(t, out, "feature-x")
	assert.Contains(t, out, "12m ago")
	assert.Contains(t, out, "42m")
	assert.Contains(t, out, "1h 05m")
	assert.Contains(t, out, "10h 00m")
	assert.Contains(t, out, "2 session(s) waiting")
}

func TestFormatStatus_Idle(t *testing.T) {
	out := FormatStatus(server.StatusResponse{State: domain.StateIdle}, time.Now())
	assert.Contains(t, out, "Idle")
	assert.NotContains(t, out, "Project:")
}

func TestStatePill(t *testing.T) {
	assert.Contains(t, StatePill(domain.StatePausedManually), "Paused")
	assert.Contains(t, StatePill(domain.StatePausedByHealthBreak), "Health break")
	assert.Contains(t, StatePill("weird"), "weird")
}

func TestFormatCommandResult(t *testing.T) {
	out := FormatCommandResult("pause", server.StatusResponse{State: domain.StatePausedManually, Project: "api", Branch: "main"})
	assert.Contains(t, out, "Tracking paused")
	assert.Contains(t, out, "api @ main")
}

func TestFormatReport(t *testing.T) {
	out := FormatReport(summary.Report{
		ByDay:     []summary.Bucket{{Key: "2024-03-13", Minutes: 45}},
		ByProject: []summary.Bucket{{Key: "api", Minutes: 30}, {Key: "web", Minutes: 15}},
		ByBranch:  []summary.Bucket{{Key: "main", Minutes: 45}},
		Total:     45,
	})
	assert.Contains(t, out, "BY PROJECT")
	assert.Contains(t, out, "web")
	assert.Contains(t, out, " 67%")
	assert.Contains(t, out, "2024-03-13")
	assert.Contains(t, out, "45m")
}

func TestFormatReport_Empty(t *testing.T) {
	assert.Contains(t, FormatReport(summary.Report{}), "No coding time")
}

func TestFormatEntries(t *testing.T) {
	out := FormatEntries([]server.Entry{
		{Date: "2024-03-12", Project: "api", Branch: "main", Minutes: 30},
		{Date: "2024-03-13", Project: "api", Branch: "unknown", Minutes: 35},
	})
	assert.Contains(t, out, "unknown")
	assert.Contains(t, out, "1h 05m")
	assert.Contains(t, out, "(2 entries)")
	assert.Contains(t, FormatEntries(nil), "No matching")
}

func TestFormatBranches(t *testing.T) {
	out := FormatBranches("api", []string{"feature-x", "main"})
	assert.Contains(t, out, "API")
	assert.Contains(t, out, "feature-x")
	assert.Contains(t, FormatBranches("api", nil), "No branches")
}
