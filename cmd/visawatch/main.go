// Command visawatch signs in to the visa appointment portal, polls the
// reschedule calendar and sounds an alarm when a date on or before the
// configured deadline becomes available.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"visawatch/internal/config"
	"visawatch/internal/logging"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	verbose    bool
	headless   bool
	configPath string

	cfg    *config.Config
	logger *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "visawatch",
	Short: "Watch the visa appointment calendar for an earlier date",
	Long: `visawatch logs in to the AIS visa appointment portal, opens the
reschedule calendar and checks it every few seconds. When a date on or before
the configured deadline shows up it rings an alarm until you press Enter.

Run without a subcommand to start watching.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("headless") {
			cfg.Browser.Headless = headless
		}

		logger, err = logging.New(cfg.Logging, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger.Get(logging.CategoryBoot).Debug("Configuration loaded",
			zap.String("path", configPath),
			zap.Bool("headless", cfg.Browser.Headless))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runWatch,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Path to the YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&headless, "headless", false, "Run Chrome without a window (overrides browser.headless)")

	rootCmd.AddCommand(runCmd, checkConfigCmd, alarmTestCmd)
}

// exitCode maps the command error to the process status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return 130
	default:
		return 1
	}
}

func main() {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(exitCode(err))
}
