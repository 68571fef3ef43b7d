package backtest

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/rustyeddy/swarm/market"
	"github.com/rustyeddy/swarm/opportunity"
	"github.com/rustyeddy/swarm/strategy"
)

// signalProb is the per-scan chance each strategy emits a signal for one
// symbol/timeframe combination.
var signalProb = map[strategy.Name]float64{
	strategy.HFScalping: 0.15,
	strategy.Momentum:   0.08,
	strategy.StatArb:    0.05,
	strategy.FundingArb: 0.03,
	strategy.Grid:       0.12,
}

var timeframes = map[strategy.Name][]string{
	strategy.HFScalping: {"1m", "3m", "5m"},
	strategy.Momentum:   {"15m", "30m", "1h"},
	strategy.StatArb:    {"15m", "1h", "4h"},
	strategy.FundingArb: {"8h"},
	strategy.Grid:       {"5m", "15m"},
}

// SignalSource generates synthetic opportunities from a seeded PRNG. It
// stands in for the real per-strategy scanners; the admission engine treats
// its output exactly like live signals. All randomness in a backtest lives
// here and in the price feed, never in the engine.
type SignalSource struct {
	rng        *rand.Rand
	symbols    []string
	strategies []strategy.Name
	seq        int
}

func NewSignalSource(seed int64, symbols []string, strategies map[strategy.Name]strategy.Config) *SignalSource {
	// Fixed strategy order keeps a seeded run reproducible.
	var names []strategy.Name
	for _, n := range strategy.All() {
		if _, ok := strategies[n]; ok {
			names = append(names, n)
		}
	}
	return &SignalSource{
		rng:        rand.New(rand.NewSource(seed)),
		symbols:    symbols,
		strategies: names,
	}
}

// Scan sweeps every symbol × strategy × timeframe combination and emits the
// opportunities that fired this cycle. Entry prices come from the supplied
// snapshot; combinations without a quote are skipped.
func (s *SignalSource) Scan(now time.Time, prices market.Snapshot) []opportunity.Opportunity {
	var opps []opportunity.Opportunity

	for _, sym := range s.symbols {
		q, ok := prices.Get(sym)
		if !ok {
			continue
		}
		for _, name := range s.strategies {
			for _, tf := range timeframes[name] {
				if s.rng.Float64() > signalProb[name] {
					continue
				}

				side := opportunity.Long
				if s.rng.Float64() < 0.5 {
					side = opportunity.Short
				}

				s.seq++
				opps = append(opps, opportunity.Opportunity{
					ID:             fmt.Sprintf("%s_%s_%s_%d", name, sym, tf, s.seq),
					Time:           now,
					Strategy:       string(name),
					Symbol:         sym,
					Timeframe:      tf,
					Side:           side,
					EntryPrice:     q.Price,
					Confidence:     uniform(s.rng, 0.65, 0.95),
					ExpectedReturn: uniform(s.rng, 0.002, 0.025),
					RiskScore:      uniform(s.rng, 0.2, 0.8),
				})
			}
		}
	}

	return opps
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
