package ledger

import (
	"errors"
	"fmt"
)

// ErrInsufficientFunds means a debit exceeded the available balance. Callers
// treat this as a broken invariant (admission must never oversubscribe), not
// a routine rejection.
var ErrInsufficientFunds = errors.New("ledger: insufficient funds")

// Ledger is the single source of truth for capital. Every percentage figure
// in the system is a read-only view over it. The swarm manager owns the
// ledger exclusively; no locking here.
type Ledger struct {
	initial    float64
	available  float64
	deployed   float64
	peak       float64
	totalPnl   float64
	dailyPnl   float64
	dailyStart float64
}

func New(initial float64) *Ledger {
	return &Ledger{
		initial:    initial,
		available:  initial,
		peak:       initial,
		dailyStart: initial,
	}
}

// Debit moves capital from available to deployed on admission.
func (l *Ledger) Debit(amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("ledger: debit must be positive, got %.2f", amount)
	}
	if amount > l.available {
		return fmt.Errorf("%w: debit %.2f > available %.2f", ErrInsufficientFunds, amount, l.available)
	}
	l.available -= amount
	l.deployed += amount
	return nil
}

// Credit returns a position's allocation plus its realized P&L to the
// available balance and rolls the high-water mark forward. Always succeeds.
func (l *Ledger) Credit(allocation, pnl float64) {
	l.deployed -= allocation
	l.available += allocation + pnl
	l.totalPnl += pnl
	l.dailyPnl += pnl
	if t := l.Total(); t > l.peak {
		l.peak = t
	}
}

// ResetDaily starts a new trading day: daily P&L zeroes out and the daily
// start capital re-bases to the current total.
func (l *Ledger) ResetDaily() {
	l.dailyPnl = 0
	l.dailyStart = l.Total()
}

func (l *Ledger) Total() float64     { return l.available + l.deployed }
func (l *Ledger) Available() float64 { return l.available }
func (l *Ledger) Deployed() float64  { return l.deployed }
func (l *Ledger) Peak() float64      { return l.peak }
func (l *Ledger) TotalPnl() float64  { return l.totalPnl }
func (l *Ledger) DailyPnl() float64  { return l.dailyPnl }

// DailyLossRatio is today's loss as a fraction of the day's starting
// capital. Gains report zero.
func (l *Ledger) DailyLossRatio() float64 {
	if l.dailyPnl >= 0 || l.dailyStart <= 0 {
		return 0
	}
	return -l.dailyPnl / l.dailyStart
}

// Drawdown is the decline of current total capital from its all-time peak.
func (l *Ledger) Drawdown() float64 {
	if l.peak <= 0 {
		return 0
	}
	dd := (l.peak - l.Total()) / l.peak
	if dd < 0 {
		return 0
	}
	return dd
}

// TotalReturnPct is the lifetime return relative to initial capital.
func (l *Ledger) TotalReturnPct() float64 {
	if l.initial <= 0 {
		return 0
	}
	return (l.Total() - l.initial) / l.initial
}

// DailyReturnPct is today's P&L relative to the day's starting capital.
func (l *Ledger) DailyReturnPct() float64 {
	if l.dailyStart <= 0 {
		return 0
	}
	return l.dailyPnl / l.dailyStart
}
