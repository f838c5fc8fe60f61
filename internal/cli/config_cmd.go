package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/codeclock/internal/cli/formatter"
	"github.com/alexanderramin/codeclock/internal/config"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the config file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteDefault(app.configPath, force); err != nil {
				return err
			}
			app.print(fmt.Sprintf("%s Wrote %s\n", formatter.StyleGreen.Render("✔"), app.configPath))
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.Marshal(app.cfg)
			if err != nil {
				return err
			}
			app.print(formatter.Dim("# "+app.configPath) + "\n" + string(data))
			return nil
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}
