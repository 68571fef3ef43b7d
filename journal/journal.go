// journal/journal.go
package journal

import "time"

// PositionRecord is written once per closed micro-position.
type PositionRecord struct {
	PositionID string
	Strategy   string
	Symbol     string
	Timeframe  string
	Side       string
	Allocated  float64
	EntryPrice float64
	ExitPrice  float64
	EntryTime  time.Time
	ExitTime   time.Time
	Pnl        float64
	Reason     string
}

// CapitalSnapshot is written once per cycle.
type CapitalSnapshot struct {
	Time      time.Time
	Total     float64
	Available float64
	Deployed  float64
	Peak      float64
	TotalPnl  float64
	DailyPnl  float64
	OpenCount int
}

type Journal interface {
	RecordPosition(PositionRecord) error
	RecordCapital(CapitalSnapshot) error
	Close() error
}

// Discard is a no-op journal for callers that do not want persistence.
type Discard struct{}

func (Discard) RecordPosition(PositionRecord) error { return nil }
func (Discard) RecordCapital(CapitalSnapshot) error { return nil }
func (Discard) Close() error                        { return nil }
