package detector

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oddslab/bookengine/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() Config {
	return Config{
		MinEdge:         0.05,
		MinConfidence:   0.7,
		MinDecimalPrice: 1.3,
		MaxDecimalPrice: 5.0,
	}
}

func testEvent() domain.EventInfo {
	return domain.EventInfo{
		ID:          "evt-1",
		HomeTeam:    "Boston",
		AwayTeam:    "Denver",
		StartTime:   time.Now().Add(4 * time.Hour),
		SeasonPhase: "2026-regular",
	}
}

func TestExpectedValue(t *testing.T) {
	ev, err := ExpectedValue(0.65, 1.6667)
	require.NoError(t, err)
	assert.InDelta(t, 0.65*0.6667-0.35, ev, 0.001)

	// Positive exactly when p exceeds the implied probability.
	atImplied, err := ExpectedValue(0.6, 1.0/0.6)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, atImplied, 1e-9)

	below, err := ExpectedValue(0.55, 1.0/0.6)
	require.NoError(t, err)
	assert.Negative(t, below)
}

func TestExpectedValueRejectsMalformedInput(t *testing.T) {
	_, err := ExpectedValue(0, 2.0)
	assert.ErrorIs(t, err, domain.ErrInvalidProbability)

	_, err = ExpectedValue(1.2, 2.0)
	assert.ErrorIs(t, err, domain.ErrInvalidProbability)

	_, err = ExpectedValue(0.5, 1.0)
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)
}

func TestAmericanPriceRoundTrip(t *testing.T) {
	q := domain.PriceQuote{American: -150}
	assert.InDelta(t, 1.6667, q.DecimalPrice(), 0.001)
	assert.InDelta(t, 0.600, q.ImpliedProbability(), 0.001)

	dog := domain.PriceQuote{American: 120}
	assert.InDelta(t, 2.2, dog.DecimalPrice(), 1e-9)
}

func TestScanQualifiesValueOpportunity(t *testing.T) {
	d := New(testConfig(), testLogger())
	event := testEvent()

	preds := []domain.Prediction{{
		EventID:     event.ID,
		Market:      domain.MarketMoneyline,
		Probability: 0.65,
		Confidence:  0.75,
		GeneratedAt: time.Now(),
	}}
	quotes := []domain.PriceQuote{{
		EventID:    event.ID,
		Bookmaker:  "pinnacle",
		Market:     domain.MarketMoneyline,
		American:   -150,
		CapturedAt: time.Now(),
	}}

	opps, err := d.Scan(preds, quotes, map[string]domain.EventInfo{event.ID: event})
	require.NoError(t, err)
	require.Len(t, opps, 1)

	opp := opps[0]
	assert.InDelta(t, 0.0833, opp.ExpectedValue, 0.001)
	assert.InDelta(t, 0.05, opp.Edge, 0.001)
	// 0.75 + 0.1667 (EV bonus) + 0.15 (edge bonus) clamps to 1.
	assert.InDelta(t, 1.0, opp.ConfidenceScore, 1e-9)
}

func TestScanFiltersBelowThresholds(t *testing.T) {
	d := New(testConfig(), testLogger())
	event := testEvent()
	events := map[string]domain.EventInfo{event.ID: event}
	quote := domain.PriceQuote{
		EventID:    event.ID,
		Market:     domain.MarketMoneyline,
		American:   -150,
		CapturedAt: time.Now(),
	}

	cases := []struct {
		name string
		pred domain.Prediction
	}{
		{"low confidence", domain.Prediction{EventID: event.ID, Market: domain.MarketMoneyline, Probability: 0.65, Confidence: 0.5}},
		{"no edge", domain.Prediction{EventID: event.ID, Market: domain.MarketMoneyline, Probability: 0.58, Confidence: 0.8}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opps, err := d.Scan([]domain.Prediction{tc.pred}, []domain.PriceQuote{quote}, events)
			require.NoError(t, err)
			assert.Empty(t, opps)
		})
	}
}

func TestScanSkipsMissingJoins(t *testing.T) {
	d := New(testConfig(), testLogger())
	event := testEvent()

	// Prediction for an unknown event, and one with no matching quote key.
	preds := []domain.Prediction{
		{EventID: "unknown", Market: domain.MarketMoneyline, Probability: 0.65, Confidence: 0.8},
		{EventID: event.ID, Market: domain.MarketSpread, Line: -3.5, Probability: 0.65, Confidence: 0.8},
	}
	quotes := []domain.PriceQuote{{
		EventID:  event.ID,
		Market:   domain.MarketMoneyline,
		American: -150,
	}}

	opps, err := d.Scan(preds, quotes, map[string]domain.EventInfo{event.ID: event})
	require.NoError(t, err)
	assert.Empty(t, opps)
}

func TestScanFailsOnMalformedProbability(t *testing.T) {
	d := New(testConfig(), testLogger())
	event := testEvent()

	preds := []domain.Prediction{{
		EventID:     event.ID,
		Market:      domain.MarketMoneyline,
		Probability: 1.5,
		Confidence:  0.8,
	}}
	quotes := []domain.PriceQuote{{
		EventID:  event.ID,
		Market:   domain.MarketMoneyline,
		American: -150,
	}}

	_, err := d.Scan(preds, quotes, map[string]domain.EventInfo{event.ID: event})
	assert.ErrorIs(t, err, domain.ErrInvalidProbability)
}

func TestScanSortsByExpectedValue(t *testing.T) {
	d := New(testConfig(), testLogger())
	evtA := testEvent()
	evtB := domain.EventInfo{ID: "evt-2", HomeTeam: "Miami", AwayTeam: "Dallas"}
	events := map[string]domain.EventInfo{evtA.ID: evtA, evtB.ID: evtB}

	preds := []domain.Prediction{
		{EventID: evtA.ID, Market: domain.MarketMoneyline, Probability: 0.62, Confidence: 0.8},
		{EventID: evtB.ID, Market: domain.MarketMoneyline, Probability: 0.70, Confidence: 0.8},
	}
	quotes := []domain.PriceQuote{
		{EventID: evtA.ID, Market: domain.MarketMoneyline, American: -120, CapturedAt: time.Now()},
		{EventID: evtB.ID, Market: domain.MarketMoneyline, American: -120, CapturedAt: time.Now()},
	}

	opps, err := d.Scan(preds, quotes, events)
	require.NoError(t, err)
	require.Len(t, opps, 2)
	assert.Equal(t, evtB.ID, opps[0].Event.ID)
	assert.GreaterOrEqual(t, opps[0].ExpectedValue, opps[1].ExpectedValue)
}

func TestDropStale(t *testing.T) {
	d := New(testConfig(), testLogger())
	now := time.Now()

	opps := []domain.Opportunity{
		{Quote: domain.PriceQuote{Bookmaker: "fresh", CapturedAt: now.Add(-time.Minute)}},
		{Quote: domain.PriceQuote{Bookmaker: "stale", CapturedAt: now.Add(-time.Hour)}},
	}

	fresh := d.DropStale(opps, 5*time.Minute, now)
	require.Len(t, fresh, 1)
	assert.Equal(t, "fresh", fresh[0].Quote.Bookmaker)
	// Input is untouched.
	assert.Len(t, opps, 2)
}

func TestConfidenceScorePriceBandPenalty(t *testing.T) {
	// Same inputs, price outside the sweet spot scores lower.
	inside := confidenceScore(0.7, 0.06, 0.03, 2.0)
	outside := confidenceScore(0.7, 0.06, 0.03, 3.2)
	assert.InDelta(t, 0.10, inside-outside, 1e-9)
}
