package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/alexanderramin/codeclock/internal/cli/formatter"
	"github.com/alexanderramin/codeclock/internal/server"
)

type statusFetcher func(ctx context.Context) (server.StatusResponse, error)

type statusMsg struct {
	status server.StatusResponse
	err    error
}

type refreshMsg struct{}

// watchModel polls the daemon and redraws the status box.
type watchModel struct {
	fetch    statusFetcher
	interval time.Duration
	now      func() time.Time

	spinner spinner.Model
	status  *server.StatusResponse
	err     error
	fetches int
}

func newWatchModel(fetch statusFetcher, interval time.Duration) watchModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = formatter.StylePurple
	return watchModel{fetch: fetch, interval: interval, now: time.Now, spinner: sp}
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.refresh())
}

func (m watchModel) refresh() tea.Cmd {
	fetch := m.fetch
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		st, err := fetch(ctx)
		return statusMsg{status: st, err: err}
	}
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, m.refresh()
		}
	case statusMsg:
		m.fetches++
		if msg.err != nil {
			m.err = msg.err
		} else {
			st := msg.status
			m.status, m.err = &st, nil
		}
		return m, tea.Tick(m.interval, func(time.Time) tea.Msg { return refreshMsg{} })
	case refreshMsg:
		return m, m.refresh()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m watchModel) View() string {
	head := m.spinner.View() + " " + formatter.Dim("codeclock watch · q to quit · r to refresh")
	switch {
	case m.err != nil:
		return head + "\n\n" + formatter.StyleRed.Render(m.err.Error()) + "\n"
	case m.status == nil:
		return head + "\n\n" + formatter.Dim("Connecting...") + "\n"
	default:
		return head + "\n\n" + formatter.FormatStatus(*m.status, m.now()) + "\n"
	}
}

func newWatchCmd(app *App) *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Live status view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api := app.api()
			m := newWatchModel(api.Status, interval)
			_, err := tea.NewProgram(m, tea.WithContext(cmd.Context()), tea.WithOutput(app.Out)).Run()
			return err
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "Refresh interval")
	return cmd
}
