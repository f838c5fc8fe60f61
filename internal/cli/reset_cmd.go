package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/alexanderramin/codeclock/internal/cli/formatter"
	"github.com/alexanderramin/codeclock/internal/ledger"
)

// errResetCancelled means the user backed out at one of the two prompts.
var errResetCancelled = errors.New("reset cancelled")

// Confirmer runs the two-step confirmation before a full reset.
type Confirmer interface {
	// Warn shows the destructive-action warning and reports whether the
	// user chose to continue.
	Warn() (bool, error)
	// Phrase asks the user to type the confirmation phrase.
	Phrase() (string, error)
}

type huhConfirmer struct{}

func (huhConfirmer) Warn() (bool, error) {
	var proceed bool
	err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[bool]().
			Title("Delete ALL tracked time?").
			Description("Every entry for every project and day will be removed. This cannot be undone.").
			Options(
				huh.NewOption("Cancel", false),
				huh.NewOption("Delete everything", true),
			).
			Value(&proceed),
	)).WithTheme(formTheme()).WithShowHelp(false).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return proceed, err
}

func (huhConfirmer) Phrase() (string, error) {
	var phrase string
	err := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title(fmt.Sprintf("Type %q to confirm", ledger.ResetAllPhrase)).
			Value(&phrase),
	)).WithTheme(formTheme()).WithShowHelp(false).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return "", nil
	}
	return phrase, err
}

// ConfirmResetAll returns the confirmation phrase to send, or
// errResetCancelled when either prompt is declined.
func ConfirmResetAll(c Confirmer) (string, error) {
	ok, err := c.Warn()
	if err != nil {
		return "", fmt.Errorf("showing warning: %w", err)
	}
	if !ok {
		return "", errResetCancelled
	}
	phrase, err := c.Phrase()
	if err != nil {
		return "", fmt.Errorf("reading confirmation: %w", err)
	}
	if ledger.CheckConfirmation(phrase) != nil {
		return "", errResetCancelled
	}
	return phrase, nil
}

func newResetCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete tracked time",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "today",
		Short: "Delete every entry dated today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := app.api().ResetToday(cmd.Context())
			if err != nil {
				return err
			}
			app.print(fmt.Sprintf("%s Removed %d entries for today\n", formatter.StyleGreen.Render("✔"), n))
			return nil
		},
	})

	var yes bool
	var phrase string
	all := &cobra.Command{
		Use:   "all",
		Short: "Delete every entry (asks twice)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.resetAll(cmd.Context(), yes, phrase)
		},
	}
	all.Flags().BoolVar(&yes, "yes", false, "Skip the prompts; requires --confirm")
	all.Flags().StringVar(&phrase, "confirm", "", fmt.Sprintf("Confirmation phrase (%q)", ledger.ResetAllPhrase))
	cmd.AddCommand(all)

	return cmd
}

func (app *App) resetAll(ctx context.Context, yes bool, phrase string) error {
	if yes {
		if err := ledger.CheckConfirmation(phrase); err != nil {
			return err
		}
	} else {
		if !app.IsInteractive() {
			return fmt.Errorf("reset all needs a terminal to confirm; pass --yes --confirm %q instead", ledger.ResetAllPhrase)
		}
		var err error
		phrase, err = ConfirmResetAll(app.Confirmer)
		if errors.Is(err, errResetCancelled) {
			app.print(formatter.Dim("Reset cancelled. Nothing was deleted.") + "\n")
			return nil
		}
		if err != nil {
			return err
		}
	}

	n, err := app.api().ResetAll(ctx, phrase)
	if err != nil {
		return err
	}
	app.print(fmt.Sprintf("%s Removed all %d entries\n", formatter.StyleRed.Render("✔"), n))
	return nil
}
