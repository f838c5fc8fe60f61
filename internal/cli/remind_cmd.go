package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRemindCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Health reminder tools",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "test",
		Short: "Show an eye-rest reminder in the connected editor now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := app.api().TestReminder(cmd.Context())
			if err != nil {
				return err
			}
			app.print(fmt.Sprintf("Reminder answered: %s\n", resp.Response))
			return nil
		},
	})
	return cmd
}
