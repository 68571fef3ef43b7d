package cmd

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/swarm/backtest"
	"github.com/rustyeddy/swarm/config"
	"github.com/rustyeddy/swarm/journal"
	"github.com/rustyeddy/swarm/ledger"
	"github.com/rustyeddy/swarm/risk"
	"github.com/rustyeddy/swarm/swarm"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the paper-trading control loop from a config file",
	Long: `Run the swarm controller against a simulated market feed.

Each cycle the controller scans for opportunities, admits the best ones
within capital and capacity limits, and walks open positions through their
exit rules. Press Ctrl-C to stop; the final status is printed on exit.

Example:
  swarm run -f swarm.yaml`,
	RunE: runRun,
}

var (
	runConfigPath string
	runSeed       int64
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "market feed seed (0 = time-based)")
	runCmd.MarkFlagRequired("config")
}

func newJournal(jc config.JournalConfig) (journal.Journal, error) {
	switch jc.Type {
	case "csv":
		return journal.NewCSV(jc.PositionsFile, jc.CapitalFile)
	case "sqlite":
		return journal.NewSQLite(jc.DBPath)
	default:
		return journal.Discard{}, nil
	}
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := newLogger()

	strategies, err := cfg.StrategyConfigs()
	if err != nil {
		return err
	}
	interval, err := cfg.CycleInterval()
	if err != nil {
		return err
	}

	jrnl, err := newJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer jrnl.Close()

	led := ledger.New(cfg.Capital.Initial)
	brk := risk.NewBreaker(risk.Limits{
		MaxDailyLossPct:    cfg.Risk.MaxDailyLossPct,
		MaxDrawdownPct:     cfg.Risk.MaxDrawdownPct,
		MaxStrategyLossPct: cfg.Risk.MaxStrategyLossPct,
	})

	mgr, err := swarm.NewManager(cfg.SwarmConfig(), strategies, led, brk, jrnl, log)
	if err != nil {
		return err
	}

	seed := runSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	source := backtest.NewSignalSource(seed, cfg.Symbols, strategies)
	feed := backtest.NewWalkFeed(seed+1, cfg.Symbols)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().
		Float64("capital", cfg.Capital.Initial).
		Int("symbols", len(cfg.Symbols)).
		Int("strategies", len(strategies)).
		Dur("interval", interval).
		Msg("swarm controller starting")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastDay := time.Now().Day()

	for {
		select {
		case <-ctx.Done():
			snap := mgr.Snapshot(time.Now())
			printStatus(snap)
			log.Info().Msg("swarm controller stopped")
			return nil

		case now := <-ticker.C:
			if now.Day() != lastDay {
				mgr.ResetDaily()
				feed.ResetDay()
				lastDay = now.Day()
			}

			prices := feed.Step(now)
			opps := source.Scan(now, prices)

			report, err := mgr.RunCycle(ctx, opps, prices, now)
			if err != nil {
				return fmt.Errorf("cycle: %w", err)
			}

			if len(report.Admitted) > 0 || len(report.Closed) > 0 {
				log.Info().
					Int("admitted", len(report.Admitted)).
					Int("closed", len(report.Closed)).
					Float64("capital", led.Total()).
					Int("open", mgr.OpenPositions()).
					Msg("cycle complete")
			}
		}
	}
}

func printStatus(snap swarm.Snapshot) {
	fmt.Printf("\nFinal Status:\n")
	fmt.Printf("  Capital: $%.2f (available $%.2f, deployed $%.2f)\n",
		snap.Capital.Total, snap.Capital.Available, snap.Capital.Deployed)
	fmt.Printf("  Total P&L: $%.2f (%.2f%%)\n", snap.Capital.TotalPnl, snap.Capital.TotalReturnPct)
	fmt.Printf("  Positions: %d open, %d opened, %d closed\n",
		snap.Swarm.Active, snap.Swarm.TotalOpened, snap.Swarm.TotalClosed)
	if snap.Swarm.TotalClosed > 0 {
		fmt.Printf("  Win Rate: %.1f%% (%d W / %d L)\n",
			snap.Swarm.WinRate*100, snap.Swarm.Wins, snap.Swarm.Losses)
	}
	if snap.Breaker.Triggered {
		fmt.Printf("  Circuit Breaker: TRIPPED (%s)\n", snap.Breaker.Reason)
	}
	for name, reason := range snap.Breaker.Paused {
		fmt.Printf("  Paused: %s (%s)\n", name, reason)
	}
}
