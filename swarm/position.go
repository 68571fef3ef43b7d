package swarm

import (
	"time"

	"github.com/rustyeddy/swarm/market"
	"github.com/rustyeddy/swarm/opportunity"
)

// Exit reasons, checked in this order. First match wins.
const (
	ReasonTarget = "target"
	ReasonStop   = "stop"
	ReasonTime   = "time"
)

// MicroPosition is an admitted, capital-backed trade instance. It is owned
// exclusively by the Manager and mutated only by exit evaluation.
type MicroPosition struct {
	ID        string
	Opp       opportunity.Opportunity
	Allocated float64

	EntryTime   time.Time
	EntryPrice  float64
	TargetPrice float64
	StopPrice   float64

	Open      bool
	ExitPrice float64
	ExitTime  time.Time
	Pnl       float64
}

func newPosition(id string, opp opportunity.Opportunity, allocated float64, now time.Time) *MicroPosition {
	entry := opp.EntryPrice
	er := opp.ExpectedReturn

	// The stop sits at half the expected move, so every position carries a
	// 2:1 reward:risk skew.
	var target, stop float64
	if opp.Side == opportunity.Long {
		target = entry * (1 + er)
		stop = entry * (1 - er*0.5)
	} else {
		target = entry * (1 - er)
		stop = entry * (1 + er*0.5)
	}

	return &MicroPosition{
		ID:          id,
		Opp:         opp,
		Allocated:   allocated,
		EntryTime:   now,
		EntryPrice:  entry,
		TargetPrice: target,
		StopPrice:   stop,
		Open:        true,
	}
}

// exit is the decision produced by checkExit.
type exit struct {
	reason string
	price  float64
}

// checkExit applies the exit rules in fixed order: target, stop, time.
// Only the current price counts: day extremes can predate the position's
// entry, and a level the price never touched while the position was open
// must not fill. Gaps through a level fill at the observed price.
// quote=false means the feed had no price this cycle; the position stays
// open, but the time exit still fires on wall clock so lifetime stays
// bounded through data outages.
func (p *MicroPosition) checkExit(q market.Quote, haveQuote bool, maxHold time.Duration, now time.Time) (exit, bool) {
	if !p.Open {
		return exit{}, false
	}

	if haveQuote {
		if p.Opp.Side == opportunity.Long {
			if q.Price >= p.TargetPrice {
				return exit{ReasonTarget, q.Price}, true
			}
			if q.Price <= p.StopPrice {
				return exit{ReasonStop, q.Price}, true
			}
		} else {
			if q.Price <= p.TargetPrice {
				return exit{ReasonTarget, q.Price}, true
			}
			if q.Price >= p.StopPrice {
				return exit{ReasonStop, q.Price}, true
			}
		}
	}

	if now.Sub(p.EntryTime) >= maxHold {
		price := p.EntryPrice // no data: flat exit, fees still apply
		if haveQuote {
			price = q.Price
		}
		return exit{ReasonTime, price}, true
	}

	return exit{}, false
}

// realize computes the signed P&L for a close: leveraged price change on the
// allocated capital, minus round-trip fees on the leveraged notional.
func (p *MicroPosition) realize(exitPrice float64, leverage, feeRate float64) float64 {
	changePct := (exitPrice - p.EntryPrice) / p.EntryPrice
	if p.Opp.Side == opportunity.Short {
		changePct = -changePct
	}
	gross := p.Allocated * leverage * changePct
	fees := p.Allocated * leverage * feeRate * 2
	return gross - fees
}
