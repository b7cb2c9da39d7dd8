package main

import (
	"context"
	"fmt"
	"os"

	"burnrate/internal/backend"
	"burnrate/internal/cli"
	"burnrate/internal/config"
	applog "burnrate/internal/log"
	"burnrate/internal/services"

	"github.com/spf13/cobra"
)

var (
	flagConfig   string
	flagDB       string
	flagScenario string
	flagQuiet    bool
)

// app holds what a command needs once the ledger is open.
type app struct {
	cfg       *config.Config
	ledger    *services.LedgerService
	importer  *services.ImportService
	dashboard *services.DashboardService
	cleanup   backend.CleanupFunc
}

var rootCmd = &cobra.Command{
	Use:           "burnctl",
	Short:         "Startup burn rate and runway from the terminal",
	Long:          "Summarize the ledger, forecast runway under a scenario, import bank CSV exports and export XLSX workbooks.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          withApp(runSummary),
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "  Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", cli.ConfigPath(), "burnctl config file")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite ledger path (overrides SQLITE_DB_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Only log errors")
}

// openApp loads configuration and opens the ledger backend.
func openApp(ctx context.Context) (*app, error) {
	cli.LoadEnvFile()
	level := os.Getenv("LOG_LEVEL")
	if flagQuiet || level == "" {
		level = "error"
	}
	logger := cli.SetupLogger(level).WithComponent(applog.ComponentBackend)

	cfg := config.Load()
	fc, err := cli.LoadFileConfig(flagConfig)
	if err != nil {
		return nil, err
	}
	fc.Apply(cfg)
	if flagDB != "" {
		cfg.DataBackend = config.BackendSQLite
		cfg.SQLiteDBPath = flagDB
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:       cfg,
		ledger:    services.NewLedgerService(res.Store, res.Publisher),
		importer:  services.NewImportService(res.Store, res.Publisher),
		dashboard: services.NewDashboardService(res.Store),
		cleanup:   res.Cleanup,
	}, nil
}

// withApp opens the ledger for the duration of run.
func withApp(run func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer func() {
			if err := a.cleanup(); err != nil {
				fmt.Fprintln(os.Stderr, "  Warning:", err)
			}
		}()
		return run(ctx, a, args)
	}
}

// loadScenario returns the predicted expenses named by --scenario, if any.
func loadScenario() (cli.Scenario, error) {
	if flagScenario == "" {
		return cli.Scenario{}, nil
	}
	return cli.LoadScenario(flagScenario)
}
