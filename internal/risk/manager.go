// Package risk scores the marginal risk of taking an opportunity and audits
// the whole portfolio against hard limits.
package risk

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/oddslab/bookengine/internal/domain"
)

// Config holds the portfolio risk limits.
type Config struct {
	MaxTotalExposure       float64 // share of bankroll
	MaxEventExposure       float64 // share of bankroll per event
	MaxParticipantExposure float64 // share of bankroll per participant
	MaxDailyRiskRatio      float64 // used / cap ratio that counts as a breach
	MaxDrawdown            float64 // boundary between high and extreme drawdown
}

// Sub-score weights for the overall risk score.
const (
	weightKelly         = 0.30
	weightCorrelation   = 0.25
	weightConcentration = 0.25
	weightLiquidity     = 0.20
)

// Action thresholds on the overall score.
const (
	betThreshold    = 0.3
	reduceThreshold = 0.6
)

// DrawdownLevel classifies the current drawdown severity.
type DrawdownLevel string

const (
	DrawdownLow     DrawdownLevel = "low"
	DrawdownMedium  DrawdownLevel = "medium"
	DrawdownHigh    DrawdownLevel = "high"
	DrawdownExtreme DrawdownLevel = "extreme"
)

// Manager performs per-opportunity risk assessment and portfolio audits.
// Stateless over its inputs and Config.
type Manager struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Manager.
func New(cfg Config, logger *slog.Logger) *Manager {
	return &Manager{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "risk")),
	}
}

// Assess scores the opportunity's marginal risk along four axes and
// recommends an action. Any existing hard-limit violation forces a skip.
func (m *Manager) Assess(opp domain.Opportunity, pf domain.PortfolioState) domain.RiskAssessment {
	kelly := kellyRisk(opp.KellyFraction)
	correlation := m.correlationRisk(opp, pf)
	concentration := m.concentrationRisk(opp, pf)
	liquidity := m.liquidityRisk(opp, pf)

	overall := weightKelly*kelly +
		weightCorrelation*correlation +
		weightConcentration*concentration +
		weightLiquidity*liquidity

	action := domain.ActionSkip
	switch {
	case len(m.CheckPortfolioLimits(pf)) > 0:
		action = domain.ActionSkip
	case overall < betThreshold:
		action = domain.ActionBet
	case overall < reduceThreshold:
		action = domain.ActionReduceStake
	}

	assessment := domain.RiskAssessment{
		KellyFraction:      opp.KellyFraction,
		MaxLossProbability: 1 - opp.Prediction.Probability,
		KellyRisk:          kelly,
		CorrelationRisk:    correlation,
		ConcentrationRisk:  concentration,
		LiquidityRisk:      liquidity,
		OverallScore:       overall,
		Action:             action,
	}

	m.logger.Debug("assessed opportunity",
		slog.String("event_id", opp.Event.ID),
		slog.Float64("overall", overall),
		slog.String("action", string(action)),
	)
	return assessment
}

// kellyRisk is a step function of the applied Kelly fraction.
func kellyRisk(f float64) float64 {
	switch {
	case f <= 0.02:
		return 0.1
	case f <= 0.05:
		return 0.3
	case f <= 0.10:
		return 0.6
	default:
		return 0.9
	}
}

// PairwiseCorrelation estimates how correlated two wagers are: 0.8 for the
// same event, else 0.4 for a shared participant, plus 0.2 for the same
// market type and 0.1 for the same season phase. Capped at 1.
func PairwiseCorrelation(a, b domain.Opportunity) float64 {
	var corr float64
	switch {
	case a.Event.ID == b.Event.ID:
		corr = 0.8
	case a.Event.SharesParticipant(b.Event):
		corr = 0.4
	}
	if a.Quote.Market == b.Quote.Market {
		corr += 0.2
	}
	if a.Event.SeasonPhase != "" && a.Event.SeasonPhase == b.Event.SeasonPhase {
		corr += 0.1
	}
	return math.Min(corr, 1.0)
}

// correlationRisk blends the worst pairwise correlation against open
// positions with the share of bankroll tied up in correlated positions.
func (m *Manager) correlationRisk(opp domain.Opportunity, pf domain.PortfolioState) float64 {
	var maxCorr, correlatedExposure float64
	for _, pos := range pf.OpenPositions {
		corr := PairwiseCorrelation(opp, pos.Opportunity)
		if corr > maxCorr {
			maxCorr = corr
		}
		if corr > 0 {
			correlatedExposure += pos.Stake
		}
	}

	exposureRatio := 0.0
	if pf.TotalBankroll > 0 {
		exposureRatio = math.Min(correlatedExposure/pf.TotalBankroll, 0.5)
	}
	return 0.7*maxCorr + 0.3*exposureRatio
}

// concentrationRisk measures how close existing same-event and
// same-participant exposure is to its limit.
func (m *Manager) concentrationRisk(opp domain.Opportunity, pf domain.PortfolioState) float64 {
	if pf.TotalBankroll <= 0 {
		return 0
	}
	gameRatio := pf.EventExposure(opp.Event.ID) / (pf.TotalBankroll * m.cfg.MaxEventExposure)

	teamExposure := math.Max(
		pf.ParticipantExposure(opp.Event.HomeTeam),
		pf.ParticipantExposure(opp.Event.AwayTeam),
	)
	teamRatio := teamExposure / (pf.TotalBankroll * m.cfg.MaxParticipantExposure)

	return math.Min(math.Max(gameRatio, teamRatio), 1.0)
}

// liquidityRisk averages a price penalty, model uncertainty, and a balance
// squeeze indicator.
func (m *Manager) liquidityRisk(opp domain.Opportunity, pf domain.PortfolioState) float64 {
	// Longshot prices are harder to get matched at size.
	pricePenalty := math.Min(math.Max(opp.Quote.DecimalPrice()-1.5, 0)*0.1, 0.5)

	uncertainty := 1 - opp.Prediction.Confidence

	squeeze := 0.0
	if pf.TotalBankroll > 0 && pf.AvailableBalance < 0.20*pf.TotalBankroll {
		squeeze = 0.3
	}

	return (pricePenalty + uncertainty + squeeze) / 3
}

// CheckPortfolioLimits audits the portfolio against every hard limit and
// returns one human-readable description per breach. Violations are data,
// not errors: the caller decides what to do with them.
//
// Boundary convention: exposure limits breach only when strictly exceeded,
// so a position set that fills a cap exactly is legal, consistent with the
// selector admitting candidates that land exactly on a cap. The daily-risk
// ratio breaches inclusively: a fully consumed budget leaves nothing to
// stake and must read as exhausted.
func (m *Manager) CheckPortfolioLimits(pf domain.PortfolioState) []string {
	var violations []string

	if pf.DailyRiskCap > 0 {
		ratio := pf.RiskUsedToday / pf.DailyRiskCap
		if ratio >= m.cfg.MaxDailyRiskRatio {
			violations = append(violations, fmt.Sprintf(
				"daily risk used %.2f of cap %.2f (ratio %.2f, limit %.2f)",
				pf.RiskUsedToday, pf.DailyRiskCap, ratio, m.cfg.MaxDailyRiskRatio))
		}
	}

	if pf.TotalBankroll > 0 {
		if ratio := pf.TotalExposure / pf.TotalBankroll; ratio > m.cfg.MaxTotalExposure {
			violations = append(violations, fmt.Sprintf(
				"total exposure %.1f%% of bankroll exceeds limit %.1f%%",
				ratio*100, m.cfg.MaxTotalExposure*100))
		}

		for eventID, exposure := range exposureByEvent(pf) {
			if ratio := exposure / pf.TotalBankroll; ratio > m.cfg.MaxEventExposure {
				violations = append(violations, fmt.Sprintf(
					"event %s exposure %.1f%% of bankroll exceeds limit %.1f%%",
					eventID, ratio*100, m.cfg.MaxEventExposure*100))
			}
		}
		for name, exposure := range exposureByParticipant(pf) {
			if ratio := exposure / pf.TotalBankroll; ratio > m.cfg.MaxParticipantExposure {
				violations = append(violations, fmt.Sprintf(
					"participant %s exposure %.1f%% of bankroll exceeds limit %.1f%%",
					name, ratio*100, m.cfg.MaxParticipantExposure*100))
			}
		}
	}

	return violations
}

// MonitorDrawdown reports the fractional decline from the peak bankroll and
// classifies its severity.
func (m *Manager) MonitorDrawdown(pf domain.PortfolioState, peakBankroll float64) (float64, DrawdownLevel) {
	if peakBankroll <= 0 || pf.TotalBankroll >= peakBankroll {
		return 0, DrawdownLow
	}
	dd := (peakBankroll - pf.TotalBankroll) / peakBankroll

	switch {
	case dd < 0.05:
		return dd, DrawdownLow
	case dd < 0.10:
		return dd, DrawdownMedium
	case dd < m.cfg.MaxDrawdown:
		return dd, DrawdownHigh
	default:
		return dd, DrawdownExtreme
	}
}

func exposureByEvent(pf domain.PortfolioState) map[string]float64 {
	out := make(map[string]float64)
	for _, pos := range pf.OpenPositions {
		out[pos.Opportunity.Event.ID] += pos.Stake
	}
	return out
}

func exposureByParticipant(pf domain.PortfolioState) map[string]float64 {
	out := make(map[string]float64)
	for _, pos := range pf.OpenPositions {
		if home := pos.Opportunity.Event.HomeTeam; home != "" {
			out[home] += pos.Stake
		}
		if away := pos.Opportunity.Event.AwayTeam; away != "" {
			out[away] += pos.Stake
		}
	}
	return out
}
