// Package sizing converts qualified opportunities into stake amounts using
// bounded fractional Kelly with correlation discounts and portfolio clamps.
package sizing

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/oddslab/bookengine/internal/domain"
)

// Config holds the Kelly sizing parameters.
type Config struct {
	MaxKellyFraction float64 // hard cap on the raw Kelly fraction
	FractionalKelly  float64 // multiplier for variance reduction, 0.5 = half Kelly
	MinKellyFraction float64 // floor applied to strictly positive fractions
	MaxBetFraction   float64 // per-bet ceiling as a share of total bankroll
	MinStake         float64 // minimum stake in currency units
}

// Sizer computes recommended stakes. Stateless over its inputs and Config.
type Sizer struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Sizer.
func New(cfg Config, logger *slog.Logger) *Sizer {
	return &Sizer{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "sizer")),
	}
}

// KellyFraction is the bankroll fraction maximizing long-run geometric growth
// for win probability p at the given decimal price, floored at zero.
func KellyFraction(p, decimalPrice float64) (float64, error) {
	if p <= 0 || p >= 1 {
		return 0, fmt.Errorf("kelly fraction: p=%g: %w", p, domain.ErrInvalidProbability)
	}
	if decimalPrice <= 1 {
		return 0, fmt.Errorf("kelly fraction: decimal_price=%g: %w", decimalPrice, domain.ErrInvalidPrice)
	}
	b := decimalPrice - 1
	q := 1 - p
	f := (b*p - q) / b
	if f < 0 {
		return 0, nil
	}
	return f, nil
}

// Size returns the applied bankroll fraction and the stake amount for one
// opportunity against the current portfolio. The returned fraction is
// stake / total bankroll, i.e. the fraction after every cap and clamp, not
// the theoretical Kelly fraction.
func (s *Sizer) Size(opp domain.Opportunity, pf domain.PortfolioState) (float64, float64, error) {
	f, err := KellyFraction(opp.Prediction.Probability, opp.Quote.DecimalPrice())
	if err != nil {
		return 0, 0, fmt.Errorf("sizer: %w", err)
	}

	if f > s.cfg.MaxKellyFraction {
		f = s.cfg.MaxKellyFraction
	}
	f *= s.cfg.FractionalKelly
	if f > 0 && f < s.cfg.MinKellyFraction {
		f = s.cfg.MinKellyFraction
	}

	adjustment := s.correlationAdjustment(opp, pf)
	stake := pf.AvailableBalance * f * adjustment

	// Daily risk budget.
	remaining := pf.RemainingDailyRisk()
	if stake > remaining {
		stake = remaining
	}
	// Per-bet ceiling.
	ceiling := s.cfg.MaxBetFraction * pf.TotalBankroll
	if stake > ceiling {
		stake = ceiling
	}
	// Minimum bet floor: bump a sub-minimum stake up only when the floor
	// itself fits inside every budget the clamps above enforce, zero it
	// otherwise. A stake already at zero stays zero.
	if stake > 0 && stake < s.cfg.MinStake {
		if s.cfg.MinStake <= remaining && s.cfg.MinStake <= ceiling && s.cfg.MinStake <= pf.AvailableBalance {
			stake = s.cfg.MinStake
		} else {
			stake = 0
		}
	}
	if stake > pf.AvailableBalance {
		stake = pf.AvailableBalance
	}

	applied := 0.0
	if pf.TotalBankroll > 0 {
		applied = stake / pf.TotalBankroll
	}

	s.logger.Debug("sized opportunity",
		slog.String("event_id", opp.Event.ID),
		slog.Float64("kelly_fraction", applied),
		slog.Float64("stake", stake),
		slog.Float64("correlation_adjustment", adjustment),
	)
	return applied, stake, nil
}

// correlationAdjustment discounts the stake for overlap with open positions:
// 0.30 per position on the same event, else 0.15 per position sharing a
// participant, plus 0.10 per position on the same market type. The combined
// penalty is capped at 0.80.
func (s *Sizer) correlationAdjustment(opp domain.Opportunity, pf domain.PortfolioState) float64 {
	var penalty float64
	for _, pos := range pf.OpenPositions {
		switch {
		case pos.Opportunity.SameEvent(opp):
			penalty += 0.30
		case pos.Opportunity.Event.SharesParticipant(opp.Event):
			penalty += 0.15
		}
		if pos.Opportunity.Quote.Market == opp.Quote.Market {
			penalty += 0.10
		}
	}
	if penalty > 0.80 {
		penalty = 0.80
	}
	return 1 - penalty
}

// ExpectedGrowthRate is the expected log-growth per bet when staking fraction
// f at the given price with win probability p. Returns -Inf when f is large
// enough to make either log argument non-positive (f >= 1).
func ExpectedGrowthRate(p, decimalPrice, f float64) float64 {
	b := decimalPrice - 1
	q := 1 - p
	winArg := 1 + b*f
	lossArg := 1 - f
	if winArg <= 0 || lossArg <= 0 {
		return math.Inf(-1)
	}
	return p*math.Log(winArg) + q*math.Log(lossArg)
}
