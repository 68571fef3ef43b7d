package backtest

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/swarm/swarm"
)

func testRunConfig(seed int64) Config {
	return Config{
		Seed:           seed,
		Days:           3,
		CyclesPerDay:   48,
		InitialCapital: 1000,
		Symbols:        []string{"BTCUSDT", "ETHUSDT", "SOLUSDT"},
		Swarm: swarm.Config{
			MaxConcurrentPositions: 20,
			MinPositionPct:         0.005,
			MaxPositionPct:         0.02,
			MaxAdmitPerCycle:       5,
		},
		Log: zerolog.Nop(),
	}
}

func TestRunCompletes(t *testing.T) {
	t.Parallel()

	res, err := Run(context.Background(), testRunConfig(7))
	require.NoError(t, err)

	assert.Equal(t, 3*48, res.Cycles)
	assert.Greater(t, res.FinalCapital, 0.0)
	assert.GreaterOrEqual(t, res.Opened, res.Closed)
	assert.Equal(t, res.Closed, res.Wins+res.Losses)
	if res.Closed > 0 {
		assert.GreaterOrEqual(t, res.WinRate, 0.0)
		assert.LessOrEqual(t, res.WinRate, 1.0)
	}
	assert.GreaterOrEqual(t, res.MaxDrawdownPct, 0.0)
}

func TestRunDeterministic(t *testing.T) {
	t.Parallel()

	a, err := Run(context.Background(), testRunConfig(42))
	require.NoError(t, err)
	b, err := Run(context.Background(), testRunConfig(42))
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestRunDifferentSeedsDiverge(t *testing.T) {
	t.Parallel()

	a, err := Run(context.Background(), testRunConfig(1))
	require.NoError(t, err)
	b, err := Run(context.Background(), testRunConfig(2))
	require.NoError(t, err)

	assert.NotEqual(t, a.Final, b.Final)
}

func TestRunRejectsBadConfig(t *testing.T) {
	t.Parallel()

	bad := testRunConfig(1)
	bad.Days = 0
	_, err := Run(context.Background(), bad)
	assert.Error(t, err)

	bad = testRunConfig(1)
	bad.InitialCapital = -5
	_, err = Run(context.Background(), bad)
	assert.Error(t, err)
}

func TestRunHonorsContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, testRunConfig(3))
	assert.ErrorIs(t, err, context.Canceled)
}
