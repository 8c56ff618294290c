// Package engine wires the detector, sizer, risk manager and ledger into one
// synchronous decision pipeline.
package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/oddslab/bookengine/internal/detector"
	"github.com/oddslab/bookengine/internal/domain"
	"github.com/oddslab/bookengine/internal/portfolio"
	"github.com/oddslab/bookengine/internal/risk"
	"github.com/oddslab/bookengine/internal/sizing"
)

// Engine runs the decision pipeline: score, drop stale, size, risk-gate,
// select, commit. One Process call completes fully before returning, so the
// ledger needs no coordination beyond its own mutex.
type Engine struct {
	detector    *detector.Detector
	sizer       *sizing.Sizer
	risk        *risk.Manager
	ledger      *portfolio.Ledger
	maxQuoteAge time.Duration
	logger      *slog.Logger
	now         func() time.Time // injectable clock
}

// New creates an Engine.
func New(
	det *detector.Detector,
	sizer *sizing.Sizer,
	riskMgr *risk.Manager,
	ledger *portfolio.Ledger,
	maxQuoteAge time.Duration,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		detector:    det,
		sizer:       sizer,
		risk:        riskMgr,
		ledger:      ledger,
		maxQuoteAge: maxQuoteAge,
		logger:      logger.With(slog.String("component", "engine")),
		now:         time.Now,
	}
}

// Process runs the full pipeline and commits the surviving opportunities as
// positions. Fail-closed: any error or panic anywhere in the pipeline is
// logged and yields an empty result instead of propagating, so nothing is
// committed under uncertainty. Commits happen only after every fallible
// stage has finished; a failure during the commit loop itself can leave
// earlier positions of the batch committed, which is accepted and covered by
// tests rather than rolled back.
func (e *Engine) Process(
	predictions []domain.Prediction,
	quotes []domain.PriceQuote,
	events map[string]domain.EventInfo,
) (committed []domain.Position) {
	committed = []domain.Position{}
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("pipeline panicked, dropping batch",
				slog.Any("panic", r),
			)
		}
	}()

	survivors, err := e.selectCandidates(predictions, quotes, events)
	if err != nil {
		e.logger.Error("pipeline failed, dropping batch", slog.String("error", err.Error()))
		return []domain.Position{}
	}

	for _, opp := range survivors {
		pos, err := e.ledger.AddPosition(opp, opp.RecommendedStake)
		if err != nil {
			e.logger.Error("commit failed, skipping position",
				slog.String("event_id", opp.Event.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		committed = append(committed, pos)
	}

	e.logger.Info("processed batch",
		slog.Int("predictions", len(predictions)),
		slog.Int("quotes", len(quotes)),
		slog.Int("committed", len(committed)),
	)
	return committed
}

// selectCandidates runs every stage before commit: score, staleness filter,
// sizing, risk gate, portfolio selection. Empty output at any stage
// short-circuits to an empty result.
func (e *Engine) selectCandidates(
	predictions []domain.Prediction,
	quotes []domain.PriceQuote,
	events map[string]domain.EventInfo,
) ([]domain.Opportunity, error) {
	opps, err := e.detector.Scan(predictions, quotes, events)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if len(opps) == 0 {
		return nil, nil
	}

	opps = e.detector.DropStale(opps, e.maxQuoteAge, e.now())
	if len(opps) == 0 {
		return nil, nil
	}

	state := e.ledger.State()

	sized := make([]domain.Opportunity, 0, len(opps))
	for _, opp := range opps {
		fraction, stake, err := e.sizer.Size(opp, state)
		if err != nil {
			return nil, fmt.Errorf("size %s: %w", opp.Event.ID, err)
		}
		if stake <= 0 {
			continue
		}
		opp.KellyFraction = fraction
		opp.RecommendedStake = stake
		sized = append(sized, opp)
	}
	if len(sized) == 0 {
		return nil, nil
	}

	gated := make([]domain.Opportunity, 0, len(sized))
	for _, opp := range sized {
		assessment := e.risk.Assess(opp, state)
		switch assessment.Action {
		case domain.ActionBet:
			gated = append(gated, opp)
		case domain.ActionReduceStake:
			opp.RecommendedStake /= 2
			opp.KellyFraction /= 2
			gated = append(gated, opp)
		case domain.ActionSkip:
			e.logger.Debug("risk gate skipped opportunity",
				slog.String("event_id", opp.Event.ID),
				slog.Float64("risk_score", assessment.OverallScore),
			)
		}
	}
	if len(gated) == 0 {
		return nil, nil
	}

	return e.ledger.Optimize(gated), nil
}
