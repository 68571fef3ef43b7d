package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/swarm/journal"
	"github.com/rustyeddy/swarm/ledger"
	"github.com/rustyeddy/swarm/risk"
	"github.com/rustyeddy/swarm/strategy"
	"github.com/rustyeddy/swarm/swarm"
)

// Config drives one backtest run.
type Config struct {
	Seed           int64
	Days           int
	CyclesPerDay   int
	InitialCapital float64
	Start          time.Time

	Symbols    []string
	Swarm      swarm.Config
	Strategies map[strategy.Name]strategy.Config
	Limits     risk.Limits

	Journal journal.Journal // optional
	Log     zerolog.Logger
}

// Results summarizes a completed run.
type Results struct {
	Cycles         int
	Opened         int
	Closed         int
	Wins           int
	Losses         int
	WinRate        float64
	FinalCapital   float64
	TotalReturnPct float64
	MaxDrawdownPct float64
	BreakerTripped bool
	BreakerReason  string
	Final          swarm.Snapshot
}

// Run replays cfg.Days of synthetic trading through the admission engine.
// Identical configs (including seed) produce identical results.
func Run(ctx context.Context, cfg Config) (Results, error) {
	if cfg.Days <= 0 || cfg.CyclesPerDay <= 0 {
		return Results{}, fmt.Errorf("backtest: days and cycles per day must be positive")
	}
	if cfg.InitialCapital <= 0 {
		return Results{}, fmt.Errorf("backtest: initial capital must be positive")
	}
	if len(cfg.Strategies) == 0 {
		cfg.Strategies = strategy.Defaults()
	}
	if cfg.Limits == (risk.Limits{}) {
		cfg.Limits = risk.DefaultLimits()
	}
	if cfg.Start.IsZero() {
		cfg.Start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}

	led := ledger.New(cfg.InitialCapital)
	brk := risk.NewBreaker(cfg.Limits)
	mgr, err := swarm.NewManager(cfg.Swarm, cfg.Strategies, led, brk, cfg.Journal, cfg.Log)
	if err != nil {
		return Results{}, fmt.Errorf("backtest: %w", err)
	}

	source := NewSignalSource(cfg.Seed, cfg.Symbols, cfg.Strategies)
	feed := NewWalkFeed(cfg.Seed+1, cfg.Symbols)

	interval := 24 * time.Hour / time.Duration(cfg.CyclesPerDay)

	var res Results
	now := cfg.Start

	for day := 0; day < cfg.Days; day++ {
		if day > 0 {
			mgr.ResetDaily()
			feed.ResetDay()
		}

		for cycle := 0; cycle < cfg.CyclesPerDay; cycle++ {
			select {
			case <-ctx.Done():
				return res, ctx.Err()
			default:
			}

			prices := feed.Step(now)
			opps := source.Scan(now, prices)

			if _, err := mgr.RunCycle(ctx, opps, prices, now); err != nil {
				return res, fmt.Errorf("backtest day %d cycle %d: %w", day+1, cycle+1, err)
			}
			res.Cycles++

			if dd := led.Drawdown() * 100; dd > res.MaxDrawdownPct {
				res.MaxDrawdownPct = dd
			}

			now = now.Add(interval)
		}
	}

	final := mgr.Snapshot(now)
	res.Opened = final.Swarm.TotalOpened
	res.Closed = final.Swarm.TotalClosed
	res.Wins = final.Swarm.Wins
	res.Losses = final.Swarm.Losses
	res.WinRate = final.Swarm.WinRate
	res.FinalCapital = final.Capital.Total
	res.TotalReturnPct = final.Capital.TotalReturnPct
	res.BreakerTripped = final.Breaker.Triggered
	res.BreakerReason = final.Breaker.Reason
	res.Final = final

	return res, nil
}
