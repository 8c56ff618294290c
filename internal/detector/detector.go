// Package detector finds value opportunities by comparing model probability
// estimates against bookmaker prices.
package detector

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/oddslab/bookengine/internal/domain"
)

// Config holds the qualification thresholds for the detector.
type Config struct {
	MinEdge         float64 // minimum expected value per unit staked
	MinConfidence   float64 // minimum model confidence
	MinDecimalPrice float64
	MaxDecimalPrice float64
}

// Detector scores (prediction, quote) pairs and emits qualifying
// opportunities. Stateless: all state lives in the inputs and Config.
type Detector struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Detector.
func New(cfg Config, logger *slog.Logger) *Detector {
	return &Detector{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "detector")),
	}
}

// ExpectedValue is the expected profit per unit staked when the true win
// probability is p and the payout multiple is decimalPrice.
func ExpectedValue(p, decimalPrice float64) (float64, error) {
	if p <= 0 || p >= 1 {
		return 0, fmt.Errorf("expected value: p=%g: %w", p, domain.ErrInvalidProbability)
	}
	if decimalPrice <= 1 {
		return 0, fmt.Errorf("expected value: decimal_price=%g: %w", decimalPrice, domain.ErrInvalidPrice)
	}
	return p*(decimalPrice-1) - (1 - p), nil
}

// Scan joins each prediction to every quote sharing its (event, market, line)
// key, scores the pair, and returns qualifying opportunities sorted by
// descending expected value. Predictions without a matching quote or event
// are logged and skipped; a malformed probability or price fails the scan.
func (d *Detector) Scan(
	predictions []domain.Prediction,
	quotes []domain.PriceQuote,
	events map[string]domain.EventInfo,
) ([]domain.Opportunity, error) {
	byKey := make(map[domain.MarketKey][]domain.PriceQuote, len(quotes))
	for _, q := range quotes {
		byKey[q.Key()] = append(byKey[q.Key()], q)
	}

	opps := make([]domain.Opportunity, 0, len(predictions))
	for _, pred := range predictions {
		event, ok := events[pred.EventID]
		if !ok {
			d.logger.Warn("no event info for prediction, skipping",
				slog.String("event_id", pred.EventID),
				slog.String("market", string(pred.Market)),
			)
			continue
		}
		matched, ok := byKey[pred.Key()]
		if !ok {
			d.logger.Debug("no quotes for prediction key, skipping",
				slog.String("event_id", pred.EventID),
				slog.String("market", string(pred.Market)),
				slog.Float64("line", pred.Line),
			)
			continue
		}

		for _, quote := range matched {
			opp, qualified, err := d.score(event, quote, pred)
			if err != nil {
				return nil, fmt.Errorf("detector: score %s %s: %w", pred.EventID, pred.Market, err)
			}
			if qualified {
				opps = append(opps, opp)
			}
		}
	}

	sort.SliceStable(opps, func(i, j int) bool {
		return opps[i].ExpectedValue > opps[j].ExpectedValue
	})
	return opps, nil
}

// score evaluates one (event, quote, prediction) triple against the
// qualification thresholds.
func (d *Detector) score(
	event domain.EventInfo,
	quote domain.PriceQuote,
	pred domain.Prediction,
) (domain.Opportunity, bool, error) {
	decimal := quote.DecimalPrice()
	ev, err := ExpectedValue(pred.Probability, decimal)
	if err != nil {
		return domain.Opportunity{}, false, err
	}
	edge := pred.Probability - quote.ImpliedProbability()

	qualified := ev > d.cfg.MinEdge &&
		pred.Confidence >= d.cfg.MinConfidence &&
		decimal >= d.cfg.MinDecimalPrice &&
		decimal <= d.cfg.MaxDecimalPrice &&
		edge > 0

	if !qualified {
		return domain.Opportunity{}, false, nil
	}

	return domain.Opportunity{
		Event:           event,
		Quote:           quote,
		Prediction:      pred,
		ExpectedValue:   ev,
		Edge:            edge,
		ConfidenceScore: confidenceScore(pred.Confidence, ev, edge, decimal),
	}, true, nil
}

// confidenceScore blends model confidence with bonuses for expected value and
// edge, and a penalty for prices outside the 1.6-2.5 sweet spot.
func confidenceScore(confidence, ev, edge, decimal float64) float64 {
	score := confidence
	score += math.Min(2*ev, 0.20)
	score += math.Min(3*edge, 0.15)
	if decimal < 1.6 || decimal > 2.5 {
		score -= 0.10
	}
	return clamp(score, 0, 1)
}

// DropStale removes opportunities whose quote was captured before
// now - maxAge. The input slice is not modified.
func (d *Detector) DropStale(opps []domain.Opportunity, maxAge time.Duration, now time.Time) []domain.Opportunity {
	cutoff := now.Add(-maxAge)
	fresh := make([]domain.Opportunity, 0, len(opps))
	for _, opp := range opps {
		if opp.Quote.CapturedAt.Before(cutoff) {
			d.logger.Debug("dropping stale opportunity",
				slog.String("event_id", opp.Event.ID),
				slog.String("bookmaker", opp.Quote.Bookmaker),
				slog.Time("captured_at", opp.Quote.CapturedAt),
			)
			continue
		}
		fresh = append(fresh, opp)
	}
	return fresh
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
