package swarm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/swarm/market"
	"github.com/rustyeddy/swarm/opportunity"
)

func longPosition(t *testing.T, entry, er float64) *MicroPosition {
	t.Helper()
	return newPosition("p1", opportunity.Opportunity{
		ID:             "o1",
		Strategy:       "momentum",
		Symbol:         "BTC/USDT",
		Side:           opportunity.Long,
		EntryPrice:     entry,
		ExpectedReturn: er,
	}, 10, time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC))
}

func TestTargetStopLevels(t *testing.T) {
	t.Parallel()

	// entry=$100, expectedReturn=0.02 -> target=$102, stop=$99
	p := longPosition(t, 100, 0.02)
	assert.InDelta(t, 102.0, p.TargetPrice, 1e-9)
	assert.InDelta(t, 99.0, p.StopPrice, 1e-9)

	short := newPosition("p2", opportunity.Opportunity{
		Side:           opportunity.Short,
		EntryPrice:     100,
		ExpectedReturn: 0.02,
	}, 10, time.Now())
	assert.InDelta(t, 98.0, short.TargetPrice, 1e-9)
	assert.InDelta(t, 101.0, short.StopPrice, 1e-9)
}

func TestCheckExitLongTarget(t *testing.T) {
	t.Parallel()

	p := longPosition(t, 100, 0.02)

	// Price ticks to 102.5 -> closes with reason "target" at the tick.
	ex, ok := p.checkExit(market.Quote{Symbol: "BTC/USDT", Price: 102.5}, true, time.Hour, p.EntryTime.Add(time.Minute))
	require.True(t, ok)
	assert.Equal(t, ReasonTarget, ex.reason)
	assert.InDelta(t, 102.5, ex.price, 1e-9)
}

func TestCheckExitLongStop(t *testing.T) {
	t.Parallel()

	p := longPosition(t, 100, 0.02)

	ex, ok := p.checkExit(market.Quote{Price: 98.4}, true, time.Hour, p.EntryTime.Add(time.Minute))
	require.True(t, ok)
	assert.Equal(t, ReasonStop, ex.reason)
	assert.InDelta(t, 98.4, ex.price, 1e-9)
}

func TestCheckExitIgnoresDayExtremes(t *testing.T) {
	t.Parallel()

	// The day's high and low predate the position; only the current price
	// can fill. A day high above the target with the price still at entry
	// is not a win, and a day low through the stop is not a loss.
	p := longPosition(t, 100, 0.02)

	_, ok := p.checkExit(market.Quote{Price: 100, High: 103, Low: 98.5}, true, time.Hour, p.EntryTime.Add(time.Minute))
	assert.False(t, ok)

	// Once the price itself reaches the level, the exit fires there.
	ex, ok := p.checkExit(market.Quote{Price: 102.1, High: 103, Low: 98.5}, true, time.Hour, p.EntryTime.Add(2*time.Minute))
	require.True(t, ok)
	assert.Equal(t, ReasonTarget, ex.reason)
	assert.InDelta(t, 102.1, ex.price, 1e-9)
}

func TestCheckExitShortSides(t *testing.T) {
	t.Parallel()

	p := newPosition("p3", opportunity.Opportunity{
		Side:           opportunity.Short,
		EntryPrice:     200,
		ExpectedReturn: 0.01,
	}, 10, time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC))

	// target = 198, stop = 201
	ex, ok := p.checkExit(market.Quote{Price: 197.5}, true, time.Hour, p.EntryTime.Add(time.Minute))
	require.True(t, ok)
	assert.Equal(t, ReasonTarget, ex.reason)

	p = newPosition("p4", opportunity.Opportunity{
		Side:           opportunity.Short,
		EntryPrice:     200,
		ExpectedReturn: 0.01,
	}, 10, time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC))

	ex, ok = p.checkExit(market.Quote{Price: 201.5}, true, time.Hour, p.EntryTime.Add(time.Minute))
	require.True(t, ok)
	assert.Equal(t, ReasonStop, ex.reason)
}

func TestCheckExitHoldsInsideBand(t *testing.T) {
	t.Parallel()

	p := longPosition(t, 100, 0.02)

	_, ok := p.checkExit(market.Quote{Price: 100.7}, true, time.Hour, p.EntryTime.Add(time.Minute))
	assert.False(t, ok)
}

func TestCheckExitTimeWithQuote(t *testing.T) {
	t.Parallel()

	p := longPosition(t, 100, 0.02)

	ex, ok := p.checkExit(market.Quote{Price: 100.5}, true, time.Hour, p.EntryTime.Add(time.Hour))
	require.True(t, ok)
	assert.Equal(t, ReasonTime, ex.reason)
	assert.InDelta(t, 100.5, ex.price, 1e-9)
}

func TestCheckExitMissingQuote(t *testing.T) {
	t.Parallel()

	p := longPosition(t, 100, 0.02)

	// No price data: stays open...
	_, ok := p.checkExit(market.Quote{}, false, time.Hour, p.EntryTime.Add(30*time.Minute))
	assert.False(t, ok)

	// ...but the time exit still fires on wall clock, filling flat.
	ex, ok := p.checkExit(market.Quote{}, false, time.Hour, p.EntryTime.Add(61*time.Minute))
	require.True(t, ok)
	assert.Equal(t, ReasonTime, ex.reason)
	assert.InDelta(t, 100.0, ex.price, 1e-9)
}

func TestRealize(t *testing.T) {
	t.Parallel()

	p := longPosition(t, 100, 0.02)

	// +2% at 15x on $10, minus round-trip fees on the leveraged notional.
	pnl := p.realize(102, 15, 0.0004)
	want := 10*15*0.02 - 10*15*0.0004*2
	assert.InDelta(t, want, pnl, 1e-9)

	short := newPosition("p5", opportunity.Opportunity{
		Side:           opportunity.Short,
		EntryPrice:     100,
		ExpectedReturn: 0.02,
	}, 10, time.Now())

	pnl = short.realize(98, 15, 0.0004)
	assert.InDelta(t, want, pnl, 1e-9)
}
