package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "swarm",
	Short: "Capital-aware admission controller for micro-position trading swarms",
	Long: `Swarm runs a fleet of leveraged micro-positions behind a single
admission gate. Strategy scanners propose opportunities; the controller
scores them, sizes them against shared capital, and manages the resulting
positions through exit and circuit-breaker rules.

It provides tools for:
  - Running the paper-trading control loop from a config file
  - Backtesting the admission policy over seeded synthetic markets
  - Generating and validating configuration files
  - Journaling positions and capital snapshots to CSV or SQLite`,
}

var logLevel string

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
}

func newLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
