package strategy

import (
	"fmt"
	"time"
)

// Name identifies one of the sub-strategies feeding the swarm. The set is
// closed: anything else is rejected at configuration load.
type Name string

const (
	HFScalping Name = "hf_scalping"
	Momentum   Name = "momentum"
	StatArb    Name = "stat_arb"
	FundingArb Name = "funding_arb"
	Grid       Name = "grid"
)

// All lists every known strategy in a fixed order.
func All() []Name {
	return []Name{HFScalping, Momentum, StatArb, FundingArb, Grid}
}

// Parse validates a strategy name from configuration or an opportunity tag.
func Parse(s string) (Name, error) {
	n := Name(s)
	for _, known := range All() {
		if n == known {
			return n, nil
		}
	}
	return "", fmt.Errorf("unknown strategy %q", s)
}

// Config holds the per-strategy parameters consumed by the swarm manager.
// Supplied once at construction, immutable thereafter.
type Config struct {
	Name          Name          `json:"name" yaml:"name"`
	Leverage      float64       `json:"leverage" yaml:"leverage"`
	FeeRate       float64       `json:"fee_rate" yaml:"fee_rate"` // per side, on leveraged notional
	MaxHold       time.Duration `json:"max_hold" yaml:"max_hold"`
	TargetWinRate float64       `json:"target_win_rate" yaml:"target_win_rate"`
	MinConfidence float64       `json:"min_confidence" yaml:"min_confidence"`
}

// Defaults returns the stock configuration for every strategy. Leverage and
// win-rate targets mirror the deployed tuning; fees are the taker rate.
func Defaults() map[Name]Config {
	return map[Name]Config{
		HFScalping: {
			Name:          HFScalping,
			Leverage:      20,
			FeeRate:       0.0004,
			MaxHold:       time.Hour,
			TargetWinRate: 0.72,
			MinConfidence: 0.75,
		},
		Momentum: {
			Name:          Momentum,
			Leverage:      15,
			FeeRate:       0.0004,
			MaxHold:       time.Hour,
			TargetWinRate: 0.65,
			MinConfidence: 0.70,
		},
		StatArb: {
			Name:          StatArb,
			Leverage:      12,
			FeeRate:       0.0004,
			MaxHold:       time.Hour,
			TargetWinRate: 0.69,
			MinConfidence: 0.65,
		},
		FundingArb: {
			Name:          FundingArb,
			Leverage:      10,
			FeeRate:       0.0004,
			MaxHold:       8 * time.Hour,
			TargetWinRate: 0.95,
			MinConfidence: 0.80,
		},
		Grid: {
			Name:          Grid,
			Leverage:      8,
			FeeRate:       0.0004,
			MaxHold:       time.Hour,
			TargetWinRate: 0.78,
			MinConfidence: 0.70,
		},
	}
}

// Validate checks a single strategy config.
func (c Config) Validate() error {
	if _, err := Parse(string(c.Name)); err != nil {
		return err
	}
	if c.Leverage <= 0 {
		return fmt.Errorf("strategy %s: leverage must be positive", c.Name)
	}
	if c.FeeRate < 0 || c.FeeRate >= 1 {
		return fmt.Errorf("strategy %s: fee_rate must be in [0,1)", c.Name)
	}
	if c.MaxHold <= 0 {
		return fmt.Errorf("strategy %s: max_hold must be positive", c.Name)
	}
	if c.TargetWinRate <= 0 || c.TargetWinRate > 1 {
		return fmt.Errorf("strategy %s: target_win_rate must be in (0,1]", c.Name)
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("strategy %s: min_confidence must be in [0,1]", c.Name)
	}
	return nil
}
