package swarm

import "time"

// Intent is emitted toward the execution layer when a position opens. The
// manager is authoritative over its own ledger and does not wait for
// execution confirmation.
type Intent struct {
	PositionID string
	Strategy   string
	Symbol     string
	Timeframe  string
	Side       string
	EntryPrice float64
	Notional   float64 // allocated capital
	Leverage   float64
	Time       time.Time
}

// Fill is emitted when a position closes with its realized result.
type Fill struct {
	PositionID string
	Strategy   string
	Symbol     string
	Side       string
	Allocated  float64
	ExitPrice  float64
	Pnl        float64
	Reason     string
	Time       time.Time
}

// TradeListener receives open/close events. Callbacks run after the
// manager's lock is released; implementations must not call back into the
// manager synchronously if they want to avoid self-serialization.
type TradeListener interface {
	OnOpen(Intent)
	OnClose(Fill)
}
