package swarm

import (
	"time"

	"github.com/rustyeddy/swarm/strategy"
)

// Snapshot is the fixed-shape status projection exposed after each cycle.
// It is a read-only copy; nothing external can mutate manager state through
// it.
type Snapshot struct {
	Time          time.Time
	Capital       CapitalStatus
	Swarm         SwarmStatus
	Opportunities OpportunityStatus
	Breaker       BreakerStatus
	Strategies    []StrategyStatus
}

type CapitalStatus struct {
	Total          float64
	Available      float64
	Deployed       float64
	DeploymentPct  float64
	Peak           float64
	TotalPnl       float64
	DailyPnl       float64
	TotalReturnPct float64
	DailyReturnPct float64
	DrawdownPct    float64
}

type SwarmStatus struct {
	Active         int
	MaxCapacity    int
	UtilizationPct float64
	TotalOpened    int
	TotalClosed    int
	Wins           int
	Losses         int
	WinRate        float64
}

type OpportunityStatus struct {
	Scanned        int
	Admitted       int
	Rejected       int
	AcceptanceRate float64
	RejectedBy     map[RejectReason]int
}

type BreakerStatus struct {
	Triggered   bool
	Reason      string
	TriggeredAt time.Time
	Paused      map[strategy.Name]string
}

type StrategyStatus struct {
	Name     strategy.Name
	Paused   bool
	Opened   int
	Closed   int
	WinRate  float64
	TotalPnl float64
	DailyPnl float64
}
