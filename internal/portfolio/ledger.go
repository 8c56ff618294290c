// Package portfolio owns the book's mutable state: open positions, bankroll,
// exposure counters and settlement history.
package portfolio

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oddslab/bookengine/internal/domain"
)

// Config holds the ledger parameters.
type Config struct {
	InitialBankroll   float64
	MaxPositions      int
	DailyRiskFraction float64 // daily cap as a share of current bankroll
	AutoCompound      bool
	CompoundMultiple  float64 // withdraw once profit exceeds this multiple of the initial bankroll

	// Exposure caps used by Optimize.
	MaxTotalExposure       float64
	MaxEventExposure       float64
	MaxParticipantExposure float64
}

// bankrollPoint is one sample of the bankroll time series, recorded after
// every settlement.
type bankrollPoint struct {
	At       time.Time
	Bankroll float64
}

// Ledger is the authoritative owner of portfolio state. All mutating and
// reading operations go through a single mutex; callers receive copies and
// never aliases of internal state.
type Ledger struct {
	mu     sync.Mutex
	cfg    Config
	logger *slog.Logger
	now    func() time.Time // injectable clock

	bankroll     float64
	available    float64
	open         []domain.Position
	history      []domain.Position
	dailyRiskCap float64
	riskUsed     float64
	riskDay      string // UTC date the riskUsed counter belongs to

	dailyPnL  map[string]float64 // settlement P&L keyed by UTC date
	series    []bankrollPoint
	peak      float64
	withdrawn float64
}

// New creates a Ledger funded with the configured initial bankroll.
func New(cfg Config, logger *slog.Logger) *Ledger {
	l := &Ledger{
		cfg:          cfg,
		logger:       logger.With(slog.String("component", "ledger")),
		now:          time.Now,
		bankroll:     cfg.InitialBankroll,
		available:    cfg.InitialBankroll,
		dailyRiskCap: cfg.DailyRiskFraction * cfg.InitialBankroll,
		dailyPnL:     make(map[string]float64),
		peak:         cfg.InitialBankroll,
	}
	l.series = append(l.series, bankrollPoint{At: l.now(), Bankroll: l.bankroll})
	return l
}

// AddPosition commits a stake against the opportunity and returns the created
// position. It enforces no sizing or risk limits; callers must have already
// applied them. Fails only on malformed input.
func (l *Ledger) AddPosition(opp domain.Opportunity, stake float64) (domain.Position, error) {
	if stake <= 0 {
		return domain.Position{}, fmt.Errorf("ledger: add position: stake=%g: %w", stake, domain.ErrInvalidStake)
	}
	decimal := opp.Quote.DecimalPrice()
	if decimal <= 1 {
		return domain.Position{}, fmt.Errorf("ledger: add position: decimal_price=%g: %w", decimal, domain.ErrInvalidPrice)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollRiskDayLocked()

	pos := domain.Position{
		ID:              uuid.New().String(),
		Opportunity:     opp,
		Stake:           stake,
		PotentialPayout: stake * decimal,
		PlacedAt:        l.now().UTC(),
		Outcome:         domain.OutcomePending,
	}
	l.open = append(l.open, pos)
	l.available -= stake
	l.riskUsed += stake

	l.logger.Info("position added",
		slog.String("position_id", pos.ID),
		slog.String("event_id", opp.Event.ID),
		slog.Float64("stake", stake),
		slog.Float64("potential_payout", pos.PotentialPayout),
	)
	return pos, nil
}

// SettlePosition resolves an open position. An unknown id is logged and
// ignored; settlement must never take the book down. The actual payout is
// credited to the available balance, the net P&L is applied to the bankroll,
// and the position is archived.
func (l *Ledger) SettlePosition(id string, outcome domain.Outcome, actualPayout float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollRiskDayLocked()

	idx := -1
	for i := range l.open {
		if l.open[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		l.logger.Error("settle: position not found, ignoring",
			slog.String("position_id", id),
			slog.String("outcome", string(outcome)),
		)
		return
	}

	pos := l.open[idx]
	l.open = append(l.open[:idx], l.open[idx+1:]...)

	pnl := actualPayout - pos.Stake
	l.available += actualPayout
	l.bankroll += pnl

	now := l.now().UTC()
	pos.Outcome = outcome
	pos.ActualPayout = actualPayout
	pos.SettledAt = &now
	l.history = append(l.history, pos)

	l.dailyPnL[now.Format("2006-01-02")] += pnl
	l.series = append(l.series, bankrollPoint{At: now, Bankroll: l.bankroll})
	if l.bankroll > l.peak {
		l.peak = l.bankroll
	}

	l.logger.Info("position settled",
		slog.String("position_id", id),
		slog.String("outcome", string(outcome)),
		slog.Float64("payout", actualPayout),
		slog.Float64("pnl", pnl),
		slog.Float64("bankroll", l.bankroll),
	)

	l.rebalanceLocked()
}

// State returns a read-only snapshot of the portfolio. The open-position
// slice is a copy; mutating it does not affect the ledger.
func (l *Ledger) State() domain.PortfolioState {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollRiskDayLocked()
	return l.stateLocked()
}

func (l *Ledger) stateLocked() domain.PortfolioState {
	open := make([]domain.Position, len(l.open))
	copy(open, l.open)
	return domain.PortfolioState{
		TotalBankroll:    l.bankroll,
		AvailableBalance: l.available,
		OpenPositions:    open,
		TotalExposure:    l.totalExposureLocked(),
		RiskUsedToday:    l.riskUsed,
		DailyRiskCap:     l.dailyRiskCap,
	}
}

// PeakBankroll returns the highest bankroll recorded so far.
func (l *Ledger) PeakBankroll() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.peak
}

// Diversification counts how open positions spread across events,
// participants and market types.
func (l *Ledger) Diversification() domain.DiversificationReport {
	l.mu.Lock()
	defer l.mu.Unlock()

	events := make(map[string]struct{})
	participants := make(map[string]struct{})
	byMarket := make(map[domain.MarketType]int)
	for _, pos := range l.open {
		events[pos.Opportunity.Event.ID] = struct{}{}
		if home := pos.Opportunity.Event.HomeTeam; home != "" {
			participants[home] = struct{}{}
		}
		if away := pos.Opportunity.Event.AwayTeam; away != "" {
			participants[away] = struct{}{}
		}
		byMarket[pos.Opportunity.Quote.Market]++
	}

	return domain.DiversificationReport{
		UniqueEvents:       len(events),
		UniqueParticipants: len(participants),
		ByMarket:           byMarket,
	}
}

func (l *Ledger) totalExposureLocked() float64 {
	var total float64
	for _, pos := range l.open {
		total += pos.Stake
	}
	return total
}

// rollRiskDayLocked resets the daily risk counter when the UTC date changes.
func (l *Ledger) rollRiskDayLocked() {
	day := l.now().UTC().Format("2006-01-02")
	if day != l.riskDay {
		l.riskDay = day
		l.riskUsed = 0
	}
}

// rebalanceLocked runs after every settlement: the daily risk cap tracks the
// current bankroll, and with auto-compounding enabled half of any profit
// beyond the configured multiple of the initial bankroll is withdrawn.
func (l *Ledger) rebalanceLocked() {
	l.dailyRiskCap = l.cfg.DailyRiskFraction * l.bankroll

	if !l.cfg.AutoCompound {
		return
	}
	profit := l.bankroll - l.cfg.InitialBankroll
	threshold := l.cfg.CompoundMultiple * l.cfg.InitialBankroll
	if profit <= threshold {
		return
	}
	withdrawal := (profit - threshold) / 2
	if withdrawal > l.available {
		withdrawal = l.available
	}
	if withdrawal <= 0 {
		return
	}
	l.bankroll -= withdrawal
	l.available -= withdrawal
	l.withdrawn += withdrawal
	l.logger.Info("auto-compound withdrawal",
		slog.Float64("amount", withdrawal),
		slog.Float64("bankroll", l.bankroll),
		slog.Float64("total_withdrawn", l.withdrawn),
	)
}

// Withdrawn returns the cumulative amount taken out by auto-compounding.
func (l *Ledger) Withdrawn() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.withdrawn
}
