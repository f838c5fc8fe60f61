package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/codeclock/internal/cli/formatter"
)

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show tracker state and running totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.api().Status(cmd.Context())
			if err != nil {
				return err
			}
			app.print(formatter.FormatStatus(st, time.Now()) + "\n")
			return nil
		},
	}
}
