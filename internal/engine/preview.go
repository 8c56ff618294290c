package engine

import (
	"fmt"

	"github.com/oddslab/bookengine/internal/domain"
	"github.com/oddslab/bookengine/internal/risk"
)

// OpportunitySummary is one row of a Preview: everything an operator needs to
// judge a candidate without committing it.
type OpportunitySummary struct {
	Event            string // "Home vs Away"
	EventID          string
	Market           domain.MarketType
	Line             float64
	Bookmaker        string
	DecimalPrice     float64
	Probability      float64
	ExpectedValue    float64
	Edge             float64
	ConfidenceScore  float64
	KellyFraction    float64
	RecommendedStake float64
	RiskScore        float64
	Action           domain.Action
}

// Preview runs scoring, sizing and risk assessment without committing
// anything. Results are ranked by descending expected value.
func (e *Engine) Preview(
	predictions []domain.Prediction,
	quotes []domain.PriceQuote,
	events map[string]domain.EventInfo,
) ([]OpportunitySummary, error) {
	opps, err := e.detector.Scan(predictions, quotes, events)
	if err != nil {
		return nil, fmt.Errorf("preview: %w", err)
	}
	opps = e.detector.DropStale(opps, e.maxQuoteAge, e.now())

	state := e.ledger.State()
	summaries := make([]OpportunitySummary, 0, len(opps))
	for _, opp := range opps {
		fraction, stake, err := e.sizer.Size(opp, state)
		if err != nil {
			return nil, fmt.Errorf("preview: size %s: %w", opp.Event.ID, err)
		}
		opp.KellyFraction = fraction
		opp.RecommendedStake = stake
		assessment := e.risk.Assess(opp, state)

		summaries = append(summaries, OpportunitySummary{
			Event:            fmt.Sprintf("%s vs %s", opp.Event.HomeTeam, opp.Event.AwayTeam),
			EventID:          opp.Event.ID,
			Market:           opp.Quote.Market,
			Line:             opp.Quote.Line,
			Bookmaker:        opp.Quote.Bookmaker,
			DecimalPrice:     opp.Quote.DecimalPrice(),
			Probability:      opp.Prediction.Probability,
			ExpectedValue:    opp.ExpectedValue,
			Edge:             opp.Edge,
			ConfidenceScore:  opp.ConfidenceScore,
			KellyFraction:    fraction,
			RecommendedStake: stake,
			RiskScore:        assessment.OverallScore,
			Action:           assessment.Action,
		})
	}
	return summaries, nil
}

// Status is a point-in-time operational snapshot of the book.
type Status struct {
	Portfolio       domain.PortfolioState
	Performance     domain.PerformanceSnapshot
	Diversification domain.DiversificationReport
	Violations      []string
	Drawdown        float64
	DrawdownLevel   risk.DrawdownLevel
}

// Status reports bankroll, performance, diversification, active limit
// violations and current drawdown.
func (e *Engine) Status() Status {
	state := e.ledger.State()
	drawdown, level := e.risk.MonitorDrawdown(state, e.ledger.PeakBankroll())
	return Status{
		Portfolio:       state,
		Performance:     e.ledger.Performance(0),
		Diversification: e.ledger.Diversification(),
		Violations:      e.risk.CheckPortfolioLimits(state),
		Drawdown:        drawdown,
		DrawdownLevel:   level,
	}
}
