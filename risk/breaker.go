package risk

import (
	"fmt"
	"time"

	"github.com/rustyeddy/swarm/strategy"
)

// Limits are the circuit-breaker thresholds, all in (0,1).
type Limits struct {
	MaxDailyLossPct    float64 // system halt
	MaxDrawdownPct     float64 // system halt
	MaxStrategyLossPct float64 // pauses the offending strategy only
}

// DefaultLimits mirrors the deployed settings: 10% daily loss, 15% drawdown,
// 5% per-strategy loss.
func DefaultLimits() Limits {
	return Limits{
		MaxDailyLossPct:    0.10,
		MaxDrawdownPct:     0.15,
		MaxStrategyLossPct: 0.05,
	}
}

// minPauseSample is the minimum closed-trade count before the win-rate pause
// rule applies.
const minPauseSample = 10

// winRateSlack is how far (in percentage points) a strategy's realized win
// rate may fall below its target before it is paused.
const winRateSlack = 0.15

// CapitalView is the read-only slice of the ledger the breaker evaluates.
type CapitalView interface {
	DailyLossRatio() float64
	Drawdown() float64
}

// Breaker is the latching risk monitor. Once triggered system-wide it stays
// triggered until an explicit Reset; per-strategy pauses are orthogonal and
// individually reversible.
type Breaker struct {
	limits Limits

	triggered bool
	reason    string
	at        time.Time

	paused map[strategy.Name]string // strategy -> pause reason
}

func NewBreaker(limits Limits) *Breaker {
	return &Breaker{
		limits: limits,
		paused: make(map[strategy.Name]string),
	}
}

// Check evaluates the three loss limits against the ledger view and the
// per-strategy loss ratios. Returns true if the system-wide breaker is (or
// already was) triggered. Strategy-level breaches pause only that strategy.
func (b *Breaker) Check(capital CapitalView, strategyLoss map[strategy.Name]float64, now time.Time) bool {
	if b.triggered {
		return true
	}

	if ratio := capital.DailyLossRatio(); ratio >= b.limits.MaxDailyLossPct {
		b.trip(fmt.Sprintf("daily loss %.1f%% exceeds limit %.1f%%",
			ratio*100, b.limits.MaxDailyLossPct*100), now)
		return true
	}

	if dd := capital.Drawdown(); dd >= b.limits.MaxDrawdownPct {
		b.trip(fmt.Sprintf("drawdown %.1f%% exceeds limit %.1f%%",
			dd*100, b.limits.MaxDrawdownPct*100), now)
		return true
	}

	for name, loss := range strategyLoss {
		if loss >= b.limits.MaxStrategyLossPct {
			b.Pause(name, fmt.Sprintf("loss %.1f%% exceeds limit %.1f%%",
				loss*100, b.limits.MaxStrategyLossPct*100))
		}
	}

	return false
}

// CheckWinRate pauses a strategy whose realized win rate, over a minimum
// sample, has fallen more than winRateSlack below its target. Returns true
// only when the pause is newly applied. Resume is an explicit operator
// action; there is no automatic recovery.
func (b *Breaker) CheckWinRate(name strategy.Name, closed int, actual, target float64) bool {
	if _, already := b.paused[name]; already {
		return false
	}
	if closed < minPauseSample {
		return false
	}
	if actual >= target-winRateSlack {
		return false
	}
	b.Pause(name, fmt.Sprintf("win rate %.1f%% vs target %.1f%%", actual*100, target*100))
	return true
}

func (b *Breaker) trip(reason string, now time.Time) {
	b.triggered = true
	b.reason = reason
	b.at = now
}

// Reset clears the system-wide trigger. Manual only.
func (b *Breaker) Reset() {
	b.triggered = false
	b.reason = ""
	b.at = time.Time{}
}

func (b *Breaker) Triggered() bool        { return b.triggered }
func (b *Breaker) Reason() string         { return b.reason }
func (b *Breaker) TriggeredAt() time.Time { return b.at }

// Pause marks a strategy inactive for admission.
func (b *Breaker) Pause(name strategy.Name, reason string) {
	if _, already := b.paused[name]; already {
		return
	}
	b.paused[name] = reason
}

// Resume reactivates a paused strategy.
func (b *Breaker) Resume(name strategy.Name) {
	delete(b.paused, name)
}

// Paused reports whether admission should skip a strategy.
func (b *Breaker) Paused(name strategy.Name) (string, bool) {
	reason, ok := b.paused[name]
	return reason, ok
}

// PausedStrategies returns a copy of the pause set for status reporting.
func (b *Breaker) PausedStrategies() map[strategy.Name]string {
	out := make(map[strategy.Name]string, len(b.paused))
	for k, v := range b.paused {
		out[k] = v
	}
	return out
}
