package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/codeclock/internal/server"
	"github.com/alexanderramin/codeclock/internal/summary"
)

// FormatStatus renders the daemon status box shown by `codeclock status`
// and the watch view.
func FormatStatus(st server.StatusResponse, now time.Time) string {
	var b strings.Builder

	b.WriteString(StatePill(st.State))
	if st.AwaitingFocus {
		b.WriteString(Dim("  waiting for editor focus"))
	}
	b.WriteString("\n\n")

	if st.Project != "" {
		fmt.Fprintf(&b, "%s %s\n", Dim("Project:"), Bold(st.Project))
		fmt.Fprintf(&b, "%s %s\n", Dim("Branch: "), StyleBlue.Render(orDash(st.Branch)))
		if st.StartedAt != nil {
			fmt.Fprintf(&b, "%s %s\n", Dim("Session:"), Since(*st.StartedAt, now))
		}
		fmt.Fprintf(&b, "%s %s\n\n", Dim("Today:  "), StyleGreen.Render(FormatMinutes(st.ProjectToday)))
	}

	b.WriteString(FormatTotals(st.Totals))

	if st.PendingWrites > 0 {
		fmt.Fprintf(&b, "\n%s\n", StyleYellow.Render(fmt.Sprintf("%d session(s) waiting to be saved", st.PendingWrites)))
	}

	return RenderBox("codeclock", strings.TrimRight(b.String(), "\n"))
}

// FormatTotals renders the five running totals as a table.
func FormatTotals(t summary.Totals) string {
	return RenderTable(
		[]string{"PERIOD", "TIME"},
		[][]string{
			{"Today", FormatMinutes(t.Today)},
			{"This week", FormatMinutes(t.ThisWeek)},
			{"This month", FormatMinutes(t.ThisMonth)},
			{"This year", FormatMinutes(t.ThisYear)},
			{"All time", FormatMinutes(t.AllTime)},
		},
		1,
	)
}

// FormatCommandResult is the one-line answer to a tracking command.
func FormatCommandResult(action string, st server.StatusResponse) string {
	line := fmt.Sprintf("%s %s", StyleGreen.Render("✔"), actionVerb(action))
	if st.Project != "" {
		line += Dim(fmt.Sprintf("  %s @ %s", st.Project, orDash(st.Branch)))
	}
	return line + "\n" + Dim("State: ") + StatePill(st.State) + "\n"
}

func actionVerb(action string) string {
	switch action {
	case "start":
		return "Tracking started"
	case "stop":
		return "Tracking stopped"
	case "pause":
		return "Tracking paused"
	case "resume":
		return "Tracking resumed"
	case "save":
		return "Session saved"
	default:
		return action
	}
}
