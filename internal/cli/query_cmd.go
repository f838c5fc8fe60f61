package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/codeclock/internal/cli/formatter"
	"github.com/alexanderramin/codeclock/internal/domain"
	"github.com/alexanderramin/codeclock/internal/ledger"
)

// queryFlags registers the shared search filters on cmd.
func queryFlags(cmd *cobra.Command, q *ledger.Query) {
	cmd.Flags().StringVar(&q.StartDate, "start", "", "First date to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&q.EndDate, "end", "", "Last date to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&q.Project, "project", "", "Project name substring")
	cmd.Flags().StringVar(&q.Branch, "branch", "", "Branch name substring")
}

func validateQuery(q ledger.Query) error {
	for _, d := range []struct{ flag, v string }{{"start", q.StartDate}, {"end", q.EndDate}} {
		if d.v == "" {
			continue
		}
		if _, err := time.Parse(domain.DateLayout, d.v); err != nil {
			return fmt.Errorf("--%s: invalid date %q (expected YYYY-MM-DD)", d.flag, d.v)
		}
	}
	if q.StartDate != "" && q.EndDate != "" && q.EndDate < q.StartDate {
		return fmt.Errorf("--end %s is before --start %s", q.EndDate, q.StartDate)
	}
	return nil
}

func newSummaryCmd(app *App) *cobra.Command {
	var q ledger.Query
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Break down coding time by project, branch and day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateQuery(q); err != nil {
				return err
			}
			report, err := app.api().Summary(cmd.Context(), q)
			if err != nil {
				return err
			}
			app.print(formatter.FormatReport(report))
			return nil
		},
	}
	queryFlags(cmd, &q)
	return cmd
}

func newSearchCmd(app *App) *cobra.Command {
	var q ledger.Query
	cmd := &cobra.Command{
		Use:   "search",
		Short: "List ledger entries matching the filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateQuery(q); err != nil {
				return err
			}
			entries, err := app.api().Entries(cmd.Context(), q)
			if err != nil {
				return err
			}
			app.print(formatter.FormatEntries(entries))
			return nil
		},
	}
	queryFlags(cmd, &q)
	return cmd
}

func newBranchesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "branches PROJECT",
		Short: "List the branches recorded for a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			branches, err := app.api().Branches(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			app.print(formatter.FormatBranches(args[0], branches))
			return nil
		},
	}
}
