package backtest

import (
	"math/rand"
	"time"

	"github.com/rustyeddy/swarm/market"
)

// walkVolatility is the per-step standard deviation of the simulated
// price change.
const walkVolatility = 0.01

// WalkFeed simulates per-symbol prices as a geometric random walk. Like the
// signal source it is fully determined by its seed. It publishes into a
// market.Book the same way a live feed would, so the control loop reads
// snapshots through the same store in both modes.
type WalkFeed struct {
	rng     *rand.Rand
	symbols []string
	book    *market.Book
	last    map[string]float64
	dayHigh map[string]float64
	dayLow  map[string]float64
}

func NewWalkFeed(seed int64, symbols []string) *WalkFeed {
	f := &WalkFeed{
		rng:     rand.New(rand.NewSource(seed)),
		symbols: symbols,
		book:    market.NewBook(),
		last:    make(map[string]float64, len(symbols)),
		dayHigh: make(map[string]float64, len(symbols)),
		dayLow:  make(map[string]float64, len(symbols)),
	}
	for _, sym := range symbols {
		p := uniform(f.rng, 100, 50000)
		f.last[sym] = p
		f.dayHigh[sym] = p
		f.dayLow[sym] = p
	}
	return f
}

// Step advances every symbol one tick, publishes the quotes, and returns
// the new snapshot, including the running day extremes as feed statistics.
func (f *WalkFeed) Step(now time.Time) market.Snapshot {
	for _, sym := range f.symbols {
		p := f.last[sym] * (1 + f.rng.NormFloat64()*walkVolatility)
		if p <= 0 {
			p = f.last[sym]
		}
		f.last[sym] = p
		if p > f.dayHigh[sym] {
			f.dayHigh[sym] = p
		}
		if p < f.dayLow[sym] {
			f.dayLow[sym] = p
		}
		f.book.Set(market.Quote{
			Symbol: sym,
			Price:  p,
			High:   f.dayHigh[sym],
			Low:    f.dayLow[sym],
			Time:   now,
		})
	}
	return f.book.Snapshot()
}

// ResetDay clears the day extremes at a day boundary.
func (f *WalkFeed) ResetDay() {
	for _, sym := range f.symbols {
		f.dayHigh[sym] = f.last[sym]
		f.dayLow[sym] = f.last[sym]
	}
}
