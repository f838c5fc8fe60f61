package cli

import (
	"github.com/spf13/cobra"

	"github.com/alexanderramin/codeclock/internal/cli/formatter"
)

func newTrackingCmds(app *App) []*cobra.Command {
	specs := []struct {
		action string
		short  string
	}{
		{"start", "Start tracking (clears a manual pause)"},
		{"stop", "Save the current session and stop tracking"},
		{"pause", "Pause tracking until resumed"},
		{"resume", "Resume after a manual pause"},
		{"save", "Save the current session now"},
	}

	cmds := make([]*cobra.Command, 0, len(specs))
	for _, s := range specs {
		action := s.action
		cmds = append(cmds, &cobra.Command{
			Use:   action,
			Short: s.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				st, err := app.api().Command(cmd.Context(), action)
				if err != nil {
					return err
				}
				app.print(formatter.FormatCommandResult(action, st))
				return nil
			},
		})
	}
	return cmds
}
