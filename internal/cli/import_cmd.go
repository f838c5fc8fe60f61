package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/codeclock/internal/cli/formatter"
)

func newImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Merge a legacy JSON export into the ledger",
		Long:  "Merge a legacy JSON export ([{date, project, timeSpent, branch?}]) into the ledger.\nThe whole file is rejected if any row is invalid.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening export: %w", err)
			}
			defer f.Close()

			n, err := app.api().Import(cmd.Context(), f)
			if err != nil {
				return err
			}
			app.print(fmt.Sprintf("%s Imported %d entries from %s\n", formatter.StyleGreen.Render("✔"), n, args[0]))
			return nil
		},
	}
}
