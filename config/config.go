package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/swarm/strategy"
	"github.com/rustyeddy/swarm/swarm"
)

// Config is the complete controller configuration. It is consumed once at
// construction; the running system never reloads it.
type Config struct {
	Capital    CapitalConfig    `json:"capital" yaml:"capital"`
	Swarm      SwarmConfig      `json:"swarm" yaml:"swarm"`
	Risk       RiskConfig       `json:"risk" yaml:"risk"`
	Strategies []StrategyConfig `json:"strategies,omitempty" yaml:"strategies,omitempty"`
	Journal    JournalConfig    `json:"journal" yaml:"journal"`
	Symbols    []string         `json:"symbols,omitempty" yaml:"symbols,omitempty"`
}

type CapitalConfig struct {
	Initial float64 `json:"initial" yaml:"initial" default:"500"`
}

type SwarmConfig struct {
	MaxConcurrentPositions int     `json:"max_concurrent_positions" yaml:"max_concurrent_positions" default:"100"`
	MinPositionPct         float64 `json:"min_position_pct" yaml:"min_position_pct" default:"0.005"`
	MaxPositionPct         float64 `json:"max_position_pct" yaml:"max_position_pct" default:"0.02"`
	MaxAdmitPerCycle       int     `json:"max_admit_per_cycle,omitempty" yaml:"max_admit_per_cycle,omitempty"`
	CycleInterval          string  `json:"cycle_interval" yaml:"cycle_interval" default:"5s"`
}

type RiskConfig struct {
	MaxDailyLossPct    float64 `json:"max_daily_loss_pct" yaml:"max_daily_loss_pct" default:"0.10"`
	MaxDrawdownPct     float64 `json:"max_drawdown_pct" yaml:"max_drawdown_pct" default:"0.15"`
	MaxStrategyLossPct float64 `json:"max_strategy_loss_pct" yaml:"max_strategy_loss_pct" default:"0.05"`
}

// StrategyConfig is the file-facing shape; durations are strings so the
// YAML stays human-editable ("1h", "8h").
type StrategyConfig struct {
	Name          string  `json:"name" yaml:"name"`
	Leverage      float64 `json:"leverage" yaml:"leverage"`
	FeeRate       float64 `json:"fee_rate" yaml:"fee_rate" default:"0.0004"`
	MaxHold       string  `json:"max_hold" yaml:"max_hold" default:"1h"`
	TargetWinRate float64 `json:"target_win_rate" yaml:"target_win_rate"`
	MinConfidence float64 `json:"min_confidence" yaml:"min_confidence"`
}

type JournalConfig struct {
	Type          string `json:"type" yaml:"type" default:"csv"` // "csv", "sqlite" or "none"
	PositionsFile string `json:"positions_file,omitempty" yaml:"positions_file,omitempty" default:"./positions.csv"`
	CapitalFile   string `json:"capital_file,omitempty" yaml:"capital_file,omitempty" default:"./capital.csv"`
	DBPath        string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// DefaultSymbols is the stock multi-symbol universe scanned by the swarm.
var DefaultSymbols = []string{
	"BTC/USDT", "ETH/USDT", "SOL/USDT", "BNB/USDT",
	"ARB/USDT", "MATIC/USDT", "AVAX/USDT", "LINK/USDT",
	"UNI/USDT", "ATOM/USDT", "DOT/USDT", "ADA/USDT",
	"XRP/USDT", "DOGE/USDT", "LTC/USDT", "BCH/USDT",
	"ETC/USDT", "FIL/USDT", "NEAR/USDT", "APT/USDT",
}

// Default returns a configuration with the stock settings.
func Default() *Config {
	cfg := &Config{}
	_ = defaults.Set(cfg)
	cfg.Symbols = append([]string(nil), DefaultSymbols...)
	return cfg
}

// LoadFromFile loads configuration from a YAML or JSON file, fills unset
// fields with defaults, and validates the result.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			if strings.HasSuffix(path, ".json") {
				return nil, fmt.Errorf("parse config: %w", jerr)
			}
			return nil, fmt.Errorf("parse config: %w (as JSON: %v)", err, jerr)
		}
	}

	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply config defaults: %w", err)
	}
	if len(cfg.Symbols) == 0 {
		cfg.Symbols = append([]string(nil), DefaultSymbols...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile writes the configuration as YAML or JSON based on extension.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks every constraint the controller relies on.
func (c *Config) Validate() error {
	if c.Capital.Initial <= 0 {
		return fmt.Errorf("capital.initial must be positive")
	}
	if err := c.SwarmConfig().Validate(); err != nil {
		return err
	}
	if _, err := c.CycleInterval(); err != nil {
		return fmt.Errorf("swarm.cycle_interval: %w", err)
	}

	for _, pct := range []struct {
		name  string
		value float64
	}{
		{"risk.max_daily_loss_pct", c.Risk.MaxDailyLossPct},
		{"risk.max_drawdown_pct", c.Risk.MaxDrawdownPct},
		{"risk.max_strategy_loss_pct", c.Risk.MaxStrategyLossPct},
	} {
		if pct.value <= 0 || pct.value >= 1 {
			return fmt.Errorf("%s must be in (0,1), got %v", pct.name, pct.value)
		}
	}

	if _, err := c.StrategyConfigs(); err != nil {
		return err
	}

	if len(c.Symbols) == 0 {
		return fmt.Errorf("at least one symbol is required")
	}

	switch c.Journal.Type {
	case "csv":
		if c.Journal.PositionsFile == "" || c.Journal.CapitalFile == "" {
			return fmt.Errorf("journal positions_file and capital_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	case "none":
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'none'")
	}

	return nil
}

// SwarmConfig converts to the swarm manager's admission policy.
func (c *Config) SwarmConfig() swarm.Config {
	return swarm.Config{
		MaxConcurrentPositions: c.Swarm.MaxConcurrentPositions,
		MinPositionPct:         c.Swarm.MinPositionPct,
		MaxPositionPct:         c.Swarm.MaxPositionPct,
		MaxAdmitPerCycle:       c.Swarm.MaxAdmitPerCycle,
	}
}

// CycleInterval parses the cycle cadence.
func (c *Config) CycleInterval() (time.Duration, error) {
	return time.ParseDuration(c.Swarm.CycleInterval)
}

// StrategyConfigs resolves the per-strategy settings. An empty strategies
// section means the stock set; a non-empty one replaces it entirely, and
// every name must belong to the closed strategy set.
func (c *Config) StrategyConfigs() (map[strategy.Name]strategy.Config, error) {
	if len(c.Strategies) == 0 {
		return strategy.Defaults(), nil
	}

	out := make(map[strategy.Name]strategy.Config, len(c.Strategies))
	for _, sc := range c.Strategies {
		name, err := strategy.Parse(sc.Name)
		if err != nil {
			return nil, err
		}
		hold, err := time.ParseDuration(sc.MaxHold)
		if err != nil {
			return nil, fmt.Errorf("strategy %s: max_hold: %w", sc.Name, err)
		}
		cfg := strategy.Config{
			Name:          name,
			Leverage:      sc.Leverage,
			FeeRate:       sc.FeeRate,
			MaxHold:       hold,
			TargetWinRate: sc.TargetWinRate,
			MinConfidence: sc.MinConfidence,
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		if _, dup := out[name]; dup {
			return nil, fmt.Errorf("strategy %s configured twice", sc.Name)
		}
		out[name] = cfg
	}
	return out, nil
}
