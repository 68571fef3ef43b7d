package strategy

import "time"

// Performance accumulates realized results for one strategy. Mutated only by
// the swarm manager under its lock.
type Performance struct {
	Name Name

	Opened int
	Closed int
	Wins   int
	Losses int

	TotalPnl float64
	DailyPnl float64

	// OpenAllocated is the capital currently deployed in this strategy's
	// open positions.
	OpenAllocated float64

	// DailyAllocated is the capital this strategy has had at risk today:
	// whatever was still open at the daily reset plus everything committed
	// since. The per-strategy loss limit compares DailyPnl against it, so
	// the denominator re-bases every day instead of growing for the life
	// of the process.
	DailyAllocated float64

	LastTrade time.Time
}

// RecordOpen notes a new position and the capital committed to it.
func (p *Performance) RecordOpen(allocated float64) {
	p.Opened++
	p.OpenAllocated += allocated
	p.DailyAllocated += allocated
}

// RecordClose folds a realized trade into the tally and releases its
// allocation from the open total.
func (p *Performance) RecordClose(allocated, pnl float64, at time.Time) {
	p.Closed++
	p.OpenAllocated -= allocated
	if p.OpenAllocated < 0 {
		p.OpenAllocated = 0
	}
	p.TotalPnl += pnl
	p.DailyPnl += pnl
	if pnl > 0 {
		p.Wins++
	} else {
		p.Losses++
	}
	p.LastTrade = at
}

// WinRate is the realized win rate over closed trades; zero before any close.
func (p *Performance) WinRate() float64 {
	if p.Closed == 0 {
		return 0
	}
	return float64(p.Wins) / float64(p.Closed)
}

// LossRatio is the strategy's daily loss relative to the capital it has had
// at risk today. Positive values mean losses; gains return zero.
func (p *Performance) LossRatio() float64 {
	if p.DailyPnl >= 0 || p.DailyAllocated <= 0 {
		return 0
	}
	return -p.DailyPnl / p.DailyAllocated
}

// ResetDaily clears the day-scoped figures. Capital still deployed carries
// over as the new day's at-risk base.
func (p *Performance) ResetDaily() {
	p.DailyPnl = 0
	p.DailyAllocated = p.OpenAllocated
}
