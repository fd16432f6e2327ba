package root

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"habitledger/internal/app"
	"habitledger/internal/calendar"
	"habitledger/internal/config"
	"habitledger/pkg/logger"
)

const Version = "0.1.0"

var (
	configEnv string
	configDir string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:           "habitctl",
	Short:         "Operate the habit completion ledger",
	Long:          "habitctl migrates the schema, toggles completions, prints progress stats and manages the event outbox.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&configEnv, "env", config.DefaultEnv(), "config environment (CONFIG_ENV)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", config.DefaultDir(), "config directory (CONFIG_DIR)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")

	rootCmd.AddCommand(
		newMigrateCmd(),
		newToggleCmd(),
		newDayCmd(),
		newStatsCmd(),
		newRoutineCmd(),
		newOutboxCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error: "+err.Error())
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configEnv, configDir)
	if err != nil {
		return nil, nil, err
	}
	// CLI output goes to stdout; keep the JSON log quiet unless asked
	level := "warn"
	if verbose {
		level = "debug"
	}
	return cfg, logger.NewLoggerWithLevel(level), nil
}

func openApp(ctx context.Context) (*app.App, func(), error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		a.Close()
		_ = log.Sync()
	}
	return a, cleanup, nil
}

// dayFlag resolves --date (YYYY-MM-DD), defaulting to today in the configured zone.
func dayFlag(a *app.App, raw string) (calendar.Day, error) {
	if raw == "" {
		return a.Service.Today(), nil
	}
	d, err := calendar.ParseDay(raw)
	if err != nil {
		return calendar.Day{}, fmt.Errorf("--date: %w", err)
	}
	return d, nil
}
