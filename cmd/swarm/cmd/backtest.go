package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/swarm/backtest"
	"github.com/rustyeddy/swarm/config"
	"github.com/rustyeddy/swarm/risk"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Backtest the admission policy over a seeded synthetic market",
	Long: `Backtest replays the swarm controller over a seeded random-walk market.

All randomness lives in the market feed and signal source; the same seed
always reproduces the same trades, capital curve, and breaker events.

Example:
  swarm backtest --days 30 --seed 42 --capital 500`,
	RunE: runBacktestCmd,
}

var (
	btConfigPath string
	btSeed       int64
	btDays       int
	btCycles     int
	btCapital    float64
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btConfigPath, "config", "f", "", "path to config file (optional, defaults used otherwise)")
	backtestCmd.Flags().Int64Var(&btSeed, "seed", 1, "PRNG seed for the market and signal source")
	backtestCmd.Flags().IntVar(&btDays, "days", 7, "number of simulated trading days")
	backtestCmd.Flags().IntVar(&btCycles, "cycles", 288, "control cycles per day")
	backtestCmd.Flags().Float64Var(&btCapital, "capital", 0, "initial capital (overrides config)")
}

func runBacktestCmd(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if btConfigPath != "" {
		var err error
		cfg, err = config.LoadFromFile(btConfigPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}
	if btCapital > 0 {
		cfg.Capital.Initial = btCapital
	}

	strategies, err := cfg.StrategyConfigs()
	if err != nil {
		return err
	}

	jrnl, err := newJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer jrnl.Close()

	fmt.Printf("Running backtest: %d days x %d cycles, seed %d\n", btDays, btCycles, btSeed)
	fmt.Printf("  Capital: $%.2f, %d symbols, %d strategies\n\n",
		cfg.Capital.Initial, len(cfg.Symbols), len(strategies))

	res, err := backtest.Run(cmd.Context(), backtest.Config{
		Seed:           btSeed,
		Days:           btDays,
		CyclesPerDay:   btCycles,
		InitialCapital: cfg.Capital.Initial,
		Symbols:        cfg.Symbols,
		Swarm:          cfg.SwarmConfig(),
		Strategies:     strategies,
		Limits: risk.Limits{
			MaxDailyLossPct:    cfg.Risk.MaxDailyLossPct,
			MaxDrawdownPct:     cfg.Risk.MaxDrawdownPct,
			MaxStrategyLossPct: cfg.Risk.MaxStrategyLossPct,
		},
		Journal: jrnl,
		Log:     newLogger(),
	})
	if err != nil {
		return err
	}

	fmt.Printf("Backtest Complete!\n")
	fmt.Printf("  Cycles: %d\n", res.Cycles)
	fmt.Printf("  Trades: %d opened, %d closed\n", res.Opened, res.Closed)
	if res.Closed > 0 {
		fmt.Printf("  Win Rate: %.1f%% (%d W / %d L)\n", res.WinRate*100, res.Wins, res.Losses)
	}
	fmt.Printf("  Final Capital: $%.2f (%.2f%%)\n", res.FinalCapital, res.TotalReturnPct)
	fmt.Printf("  Max Drawdown: %.2f%%\n", res.MaxDrawdownPct)
	if res.BreakerTripped {
		fmt.Printf("  Circuit Breaker: TRIPPED (%s)\n", res.BreakerReason)
	}
	for name, reason := range res.Final.Breaker.Paused {
		fmt.Printf("  Paused: %s (%s)\n", name, reason)
	}

	return nil
}
