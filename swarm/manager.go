package swarm

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/swarm/journal"
	"github.com/rustyeddy/swarm/ledger"
	"github.com/rustyeddy/swarm/market"
	"github.com/rustyeddy/swarm/opportunity"
	"github.com/rustyeddy/swarm/pkg/id"
	"github.com/rustyeddy/swarm/risk"
	"github.com/rustyeddy/swarm/strategy"
)

// RejectReason classifies why an opportunity was not admitted. All of these
// are local, non-fatal outcomes; the cycle always completes.
type RejectReason string

const (
	RejectInvalid             RejectReason = "invalid_opportunity"
	RejectUnknownStrategy     RejectReason = "unknown_strategy"
	RejectLowConfidence       RejectReason = "confidence_below_minimum"
	RejectStrategyPaused      RejectReason = "strategy_paused"
	RejectInsufficientCapital RejectReason = "insufficient_capital"
	RejectCapacityExceeded    RejectReason = "capacity_exceeded"
	RejectBreakerActive       RejectReason = "circuit_breaker_active"
)

// Config is the swarm-level admission policy, supplied once at construction.
type Config struct {
	MaxConcurrentPositions int
	MinPositionPct         float64
	MaxPositionPct         float64
	// MaxAdmitPerCycle bounds admissions per cycle even when slots are
	// free. Zero means only the slot count limits a cycle.
	MaxAdmitPerCycle int
}

func (c Config) Validate() error {
	if c.MaxConcurrentPositions <= 0 {
		return fmt.Errorf("max_concurrent_positions must be positive, got %d", c.MaxConcurrentPositions)
	}
	if c.MinPositionPct <= 0 || c.MinPositionPct > c.MaxPositionPct || c.MaxPositionPct > 1 {
		return fmt.Errorf("position pct bounds invalid: min %.4f max %.4f", c.MinPositionPct, c.MaxPositionPct)
	}
	if c.MaxAdmitPerCycle < 0 {
		return fmt.Errorf("max_admit_per_cycle must be non-negative, got %d", c.MaxAdmitPerCycle)
	}
	return nil
}

// CycleReport summarizes one admission/exit cycle.
type CycleReport struct {
	Admitted []string // opportunity IDs, in admission order
	Closed   []Fill
	Rejected map[RejectReason]int
}

// Manager is the central scheduler: it owns the active-position set and the
// capital ledger, admits ranked opportunities under slot and capital bounds,
// and drives every position to an exit. All mutation happens under one
// exclusive lock; a cycle is atomic.
type Manager struct {
	mu sync.Mutex

	cfg        Config
	strategies map[strategy.Name]strategy.Config

	ledger  *ledger.Ledger
	breaker *risk.Breaker
	jrnl    journal.Journal
	log     zerolog.Logger

	positions map[string]*MicroPosition
	perf      map[strategy.Name]*strategy.Performance
	listener  TradeListener

	scanned    int
	admitted   int
	rejected   int
	rejectedBy map[RejectReason]int
	opened     int
	closed     int
	wins       int
	losses     int

	haltLogged bool
}

func NewManager(cfg Config, strategies map[strategy.Name]strategy.Config,
	led *ledger.Ledger, brk *risk.Breaker, jrnl journal.Journal, log zerolog.Logger) (*Manager, error) {

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("swarm config: %w", err)
	}
	if len(strategies) == 0 {
		return nil, errors.New("swarm config: no strategies configured")
	}
	for name, scfg := range strategies {
		if err := scfg.Validate(); err != nil {
			return nil, fmt.Errorf("swarm config: %w", err)
		}
		if name != scfg.Name {
			return nil, fmt.Errorf("swarm config: strategy key %s does not match config name %s", name, scfg.Name)
		}
	}
	if jrnl == nil {
		jrnl = journal.Discard{}
	}

	perf := make(map[strategy.Name]*strategy.Performance, len(strategies))
	for name := range strategies {
		perf[name] = &strategy.Performance{Name: name}
	}

	return &Manager{
		cfg:        cfg,
		strategies: strategies,
		ledger:     led,
		breaker:    brk,
		jrnl:       jrnl,
		log:        log,
		positions:  make(map[string]*MicroPosition),
		perf:       perf,
		rejectedBy: make(map[RejectReason]int),
	}, nil
}

// SetTradeListener sets the execution-boundary listener. Callbacks fire
// after the manager's lock is released.
func (m *Manager) SetTradeListener(l TradeListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listener = l
}

// RunCycle performs one atomic unit of work: score and rank the cycle's
// opportunities, admit under slot/capital bounds, evaluate exits against the
// price snapshot, then journal the capital state. The only error it returns
// is a ledger invariant breach, which aborts the cycle.
func (m *Manager) RunCycle(ctx context.Context, opps []opportunity.Opportunity, prices market.Snapshot, now time.Time) (CycleReport, error) {
	_ = ctx // decisions are pure in-memory computations; reserved for future cancellation checks

	m.mu.Lock()

	report := CycleReport{Rejected: make(map[RejectReason]int)}

	candidates := make([]opportunity.Opportunity, 0, len(opps))
	for _, o := range opps {
		m.scanned++
		o.Clamp()
		if err := o.Validate(); err != nil {
			m.rejectLocked(&report, RejectInvalid)
			continue
		}
		o.Score = opportunity.Score(o)
		candidates = append(candidates, o)
	}
	opportunity.Rank(candidates)

	intents, err := m.admitLocked(candidates, now, &report)
	if err != nil {
		m.mu.Unlock()
		return report, err
	}

	fills := m.evaluateExitsLocked(prices, now, &report)

	if err := m.jrnl.RecordCapital(journal.CapitalSnapshot{
		Time:      now,
		Total:     m.ledger.Total(),
		Available: m.ledger.Available(),
		Deployed:  m.ledger.Deployed(),
		Peak:      m.ledger.Peak(),
		TotalPnl:  m.ledger.TotalPnl(),
		DailyPnl:  m.ledger.DailyPnl(),
		OpenCount: len(m.positions),
	}); err != nil {
		m.log.Warn().Err(err).Msg("journal capital snapshot failed")
	}

	listener := m.listener
	m.mu.Unlock()

	if listener != nil {
		for _, it := range intents {
			listener.OnOpen(it)
		}
		for _, fl := range fills {
			listener.OnClose(fl)
		}
	}

	return report, nil
}

func (m *Manager) rejectLocked(report *CycleReport, reason RejectReason) {
	m.rejected++
	m.rejectedBy[reason]++
	report.Rejected[reason]++
}

func (m *Manager) admitLocked(candidates []opportunity.Opportunity, now time.Time, report *CycleReport) ([]Intent, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	if m.breaker.Triggered() {
		for range candidates {
			m.rejectLocked(report, RejectBreakerActive)
		}
		if !m.haltLogged {
			m.log.Error().
				Str("reason", m.breaker.Reason()).
				Time("triggered_at", m.breaker.TriggeredAt()).
				Msg("circuit breaker active: all admissions halted until manual reset")
			m.haltLogged = true
		}
		return nil, nil
	}

	budget := m.cfg.MaxConcurrentPositions - len(m.positions)
	if m.cfg.MaxAdmitPerCycle > 0 && m.cfg.MaxAdmitPerCycle < budget {
		budget = m.cfg.MaxAdmitPerCycle
	}

	var intents []Intent
	for _, o := range candidates {
		if budget <= 0 {
			m.rejectLocked(report, RejectCapacityExceeded)
			continue
		}

		name, err := strategy.Parse(o.Strategy)
		if err != nil {
			m.rejectLocked(report, RejectUnknownStrategy)
			continue
		}
		scfg, configured := m.strategies[name]
		if !configured {
			m.rejectLocked(report, RejectUnknownStrategy)
			continue
		}

		if _, paused := m.breaker.Paused(name); paused {
			m.rejectLocked(report, RejectStrategyPaused)
			continue
		}
		if o.Confidence < scfg.MinConfidence {
			m.rejectLocked(report, RejectLowConfidence)
			continue
		}

		amount, err := risk.Allocate(o.Score, m.ledger.Total(), m.ledger.Available(),
			m.cfg.MinPositionPct, m.cfg.MaxPositionPct)
		if err != nil {
			// One expensive opportunity must not starve cheaper ones.
			m.rejectLocked(report, RejectInsufficientCapital)
			continue
		}

		if err := m.ledger.Debit(amount); err != nil {
			// Allocate clamps to the available balance, so a failed debit
			// means the books are broken, not a policy rejection.
			m.log.Error().Err(err).Msg("ledger invariant breached during admission")
			return intents, fmt.Errorf("admit %s: %w", o.ID, err)
		}

		p := newPosition(id.New(), o, amount, now)
		m.positions[p.ID] = p
		m.perf[name].RecordOpen(amount)
		m.opened++
		m.admitted++
		budget--

		report.Admitted = append(report.Admitted, o.ID)
		intents = append(intents, Intent{
			PositionID: p.ID,
			Strategy:   o.Strategy,
			Symbol:     o.Symbol,
			Timeframe:  o.Timeframe,
			Side:       string(o.Side),
			EntryPrice: o.EntryPrice,
			Notional:   amount,
			Leverage:   scfg.Leverage,
			Time:       now,
		})

		m.log.Info().
			Str("strategy", o.Strategy).
			Str("symbol", o.Symbol).
			Str("timeframe", o.Timeframe).
			Str("side", string(o.Side)).
			Float64("allocated", amount).
			Float64("score", o.Score).
			Msg("position opened")
	}

	return intents, nil
}

func (m *Manager) evaluateExitsLocked(prices market.Snapshot, now time.Time, report *CycleReport) []Fill {
	// Iterate in a fixed order so replaying a snapshot closes positions the
	// same way every time.
	ids := make([]string, 0, len(m.positions))
	for pid := range m.positions {
		ids = append(ids, pid)
	}
	sort.Strings(ids)

	var fills []Fill
	for _, pid := range ids {
		p := m.positions[pid]
		name := strategy.Name(p.Opp.Strategy)
		scfg := m.strategies[name]

		q, haveQuote := prices.Get(p.Opp.Symbol)
		ex, shouldClose := p.checkExit(q, haveQuote, scfg.MaxHold, now)
		if !shouldClose {
			continue
		}

		pnl := p.realize(ex.price, scfg.Leverage, scfg.FeeRate)

		p.Open = false
		p.ExitPrice = ex.price
		p.ExitTime = now
		p.Pnl = pnl
		delete(m.positions, pid)

		m.ledger.Credit(p.Allocated, pnl)

		perf := m.perf[name]
		perf.RecordClose(p.Allocated, pnl, now)
		m.closed++
		if pnl > 0 {
			m.wins++
		} else {
			m.losses++
		}

		if err := m.jrnl.RecordPosition(journal.PositionRecord{
			PositionID: p.ID,
			Strategy:   p.Opp.Strategy,
			Symbol:     p.Opp.Symbol,
			Timeframe:  p.Opp.Timeframe,
			Side:       string(p.Opp.Side),
			Allocated:  p.Allocated,
			EntryPrice: p.EntryPrice,
			ExitPrice:  ex.price,
			EntryTime:  p.EntryTime,
			ExitTime:   now,
			Pnl:        pnl,
			Reason:     ex.reason,
		}); err != nil {
			m.log.Warn().Err(err).Str("position", p.ID).Msg("journal position failed")
		}

		fill := Fill{
			PositionID: p.ID,
			Strategy:   p.Opp.Strategy,
			Symbol:     p.Opp.Symbol,
			Side:       string(p.Opp.Side),
			Allocated:  p.Allocated,
			ExitPrice:  ex.price,
			Pnl:        pnl,
			Reason:     ex.reason,
			Time:       now,
		}
		fills = append(fills, fill)
		report.Closed = append(report.Closed, fill)

		m.log.Info().
			Str("strategy", p.Opp.Strategy).
			Str("symbol", p.Opp.Symbol).
			Str("reason", ex.reason).
			Float64("pnl", pnl).
			Msg("position closed")

		// The breaker is evaluated after every capital-affecting close.
		if m.breaker.Check(m.ledger, m.strategyLossLocked(), now) && !m.haltLogged {
			m.log.Error().
				Str("reason", m.breaker.Reason()).
				Msg("circuit breaker triggered")
			m.haltLogged = true
		}
		if m.breaker.CheckWinRate(name, perf.Closed, perf.WinRate(), scfg.TargetWinRate) {
			m.log.Warn().
				Str("strategy", string(name)).
				Float64("win_rate", perf.WinRate()).
				Float64("target", scfg.TargetWinRate).
				Msg("strategy paused on win-rate decay")
		}
	}

	return fills
}

func (m *Manager) strategyLossLocked() map[strategy.Name]float64 {
	losses := make(map[strategy.Name]float64)
	for name, perf := range m.perf {
		if ratio := perf.LossRatio(); ratio > 0 {
			losses[name] = ratio
		}
	}
	return losses
}

// OpenPositions returns the current open-position count.
func (m *Manager) OpenPositions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.positions)
}

// ResetBreaker clears a system-wide halt. This is a deliberate operator
// action and the only way a triggered breaker re-admits risk.
func (m *Manager) ResetBreaker() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.breaker.Reset()
	m.haltLogged = false
	m.log.Info().Msg("circuit breaker reset")
}

// PauseStrategy manually pauses one strategy's admissions.
func (m *Manager) PauseStrategy(name strategy.Name, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.breaker.Pause(name, reason)
}

// ResumeStrategy reactivates a paused strategy.
func (m *Manager) ResumeStrategy(name strategy.Name) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.breaker.Resume(name)
	m.log.Info().Str("strategy", string(name)).Msg("strategy resumed")
}

// ResetDaily re-bases the day-scoped metrics. Call at the start of each
// trading day.
func (m *Manager) ResetDaily() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ledger.ResetDaily()
	for _, perf := range m.perf {
		perf.ResetDaily()
	}
	m.log.Info().Float64("capital", m.ledger.Total()).Msg("daily metrics reset")
}

// Snapshot returns the fixed-shape status projection for external rendering.
func (m *Manager) Snapshot(now time.Time) Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := m.ledger.Total()
	deployed := m.ledger.Deployed()

	deployPct := 0.0
	if total > 0 {
		deployPct = deployed / total * 100
	}

	winRate := 0.0
	if m.closed > 0 {
		winRate = float64(m.wins) / float64(m.closed)
	}

	acceptance := 0.0
	if m.scanned > 0 {
		acceptance = float64(m.admitted) / float64(m.scanned) * 100
	}

	rejectedBy := make(map[RejectReason]int, len(m.rejectedBy))
	for k, v := range m.rejectedBy {
		rejectedBy[k] = v
	}

	paused := m.breaker.PausedStrategies()

	strategies := make([]StrategyStatus, 0, len(m.perf))
	for _, name := range strategy.All() {
		perf, ok := m.perf[name]
		if !ok {
			continue
		}
		_, isPaused := paused[name]
		strategies = append(strategies, StrategyStatus{
			Name:     name,
			Paused:   isPaused,
			Opened:   perf.Opened,
			Closed:   perf.Closed,
			WinRate:  perf.WinRate(),
			TotalPnl: perf.TotalPnl,
			DailyPnl: perf.DailyPnl,
		})
	}

	return Snapshot{
		Time: now,
		Capital: CapitalStatus{
			Total:          total,
			Available:      m.ledger.Available(),
			Deployed:       deployed,
			DeploymentPct:  deployPct,
			Peak:           m.ledger.Peak(),
			TotalPnl:       m.ledger.TotalPnl(),
			DailyPnl:       m.ledger.DailyPnl(),
			TotalReturnPct: m.ledger.TotalReturnPct() * 100,
			DailyReturnPct: m.ledger.DailyReturnPct() * 100,
			DrawdownPct:    m.ledger.Drawdown() * 100,
		},
		Swarm: SwarmStatus{
			Active:         len(m.positions),
			MaxCapacity:    m.cfg.MaxConcurrentPositions,
			UtilizationPct: float64(len(m.positions)) / float64(m.cfg.MaxConcurrentPositions) * 100,
			TotalOpened:    m.opened,
			TotalClosed:    m.closed,
			Wins:           m.wins,
			Losses:         m.losses,
			WinRate:        winRate,
		},
		Opportunities: OpportunityStatus{
			Scanned:        m.scanned,
			Admitted:       m.admitted,
			Rejected:       m.rejected,
			AcceptanceRate: acceptance,
			RejectedBy:     rejectedBy,
		},
		Breaker: BreakerStatus{
			Triggered:   m.breaker.Triggered(),
			Reason:      m.breaker.Reason(),
			TriggeredAt: m.breaker.TriggeredAt(),
			Paused:      paused,
		},
		Strategies: strategies,
	}
}
