package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/alexanderramin/codeclock/internal/client"
	"github.com/alexanderramin/codeclock/internal/config"
	"github.com/alexanderramin/codeclock/internal/ledger"
	"github.com/alexanderramin/codeclock/internal/server"
	"github.com/alexanderramin/codeclock/internal/summary"
)

// API is the daemon surface the commands use; *client.Client satisfies it.
type API interface {
	Status(ctx context.Context) (server.StatusResponse, error)
	Summary(ctx context.Context, q ledger.Query) (summary.Report, error)
	Entries(ctx context.Context, q ledger.Query) ([]server.Entry, error)
	Branches(ctx context.Context, project string) ([]string, error)
	Command(ctx context.Context, action string) (server.StatusResponse, error)
	ResetToday(ctx context.Context) (int, error)
	ResetAll(ctx context.Context, confirm string) (int, error)
	Import(ctx context.Context, export io.Reader) (int, error)
	TestReminder(ctx context.Context) (server.ReminderTestResponse, error)
}

// App holds what the commands need. Zero-valued fields get defaults in
// NewRootCmd.
type App struct {
	// Serve runs the daemon until ctx is canceled.
	Serve func(ctx context.Context, cfg config.Config, configPath string) error
	// Dial returns an API for the daemon at addr.
	Dial func(addr string) API
	// IsInteractive reports whether stdin is a terminal.
	IsInteractive func() bool
	Confirmer     Confirmer
	Out           io.Writer
	Err           io.Writer

	configPath string
	addr       string
	cfg        config.Config
}

// NewRootCmd creates the top-level "codeclock" command and registers all
// subcommands against app.
func NewRootCmd(app *App) *cobra.Command {
	app.defaults()

	root := &cobra.Command{
		Use:           "codeclock",
		Short:         "Track coding time from editor activity",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			app.loadConfig()
			return nil
		},
	}
	root.SetOut(app.Out)
	root.SetErr(app.Err)
	root.PersistentFlags().AddFlagSet(app.flagSet())

	root.AddCommand(
		newServeCmd(app),
		newStatusCmd(app),
		newSummaryCmd(app),
		newSearchCmd(app),
		newBranchesCmd(app),
		newResetCmd(app),
		newImportCmd(app),
		newConfigCmd(app),
		newWatchCmd(app),
		newRemindCmd(app),
	)
	root.AddCommand(newTrackingCmds(app)...)

	return root
}

func (app *App) defaults() {
	if app.Out == nil {
		app.Out = os.Stdout
	}
	if app.Err == nil {
		app.Err = os.Stderr
	}
	if app.Dial == nil {
		app.Dial = func(addr string) API { return client.New(addr) }
	}
	if app.IsInteractive == nil {
		app.IsInteractive = func() bool { return false }
	}
	if app.Confirmer == nil {
		app.Confirmer = huhConfirmer{}
	}
}

// flagSet holds the flags every command shares.
func (app *App) flagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("codeclock", pflag.ContinueOnError)
	fs.StringVar(&app.configPath, "config", config.DefaultPath(), "Path to the config file")
	fs.StringVar(&app.addr, "addr", "", "Daemon address (defaults to server.listen from the config)")
	return fs
}

func (app *App) loadConfig() {
	cfg, err := config.Load(app.configPath)
	if err != nil {
		fmt.Fprintf(app.Err, "warning: %v (using defaults)\n", err)
	}
	for _, msg := range cfg.Normalize() {
		fmt.Fprintf(app.Err, "warning: %s\n", msg)
	}
	app.cfg = cfg
	if app.addr == "" {
		app.addr = cfg.Server.Listen
	}
}

func (app *App) api() API {
	return app.Dial(app.addr)
}

func (app *App) print(s string) {
	fmt.Fprint(app.Out, s)
}
