package portfolio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oddslab/bookengine/internal/domain"
)

// play opens and settles one position on the ledger's injected clock.
func play(t *testing.T, l *Ledger, eventID string, stake float64, outcome domain.Outcome, payout float64) {
	t.Helper()
	pos, err := l.AddPosition(opp(eventID, "Home-"+eventID, "Away-"+eventID, -150, 0.08), stake)
	require.NoError(t, err)
	l.SettlePosition(pos.ID, outcome, payout)
}

func TestPerformanceCountsAndROI(t *testing.T) {
	l := New(testConfig(), testLogger())

	play(t, l, "evt-1", 100, domain.OutcomeWin, 166.67)
	play(t, l, "evt-2", 100, domain.OutcomeLoss, 0)
	play(t, l, "evt-3", 100, domain.OutcomePush, 100)

	perf := l.Performance(0)
	assert.Equal(t, 3, perf.TotalBets)
	assert.Equal(t, 1, perf.Wins)
	assert.Equal(t, 1, perf.Losses)
	assert.Equal(t, 1, perf.Pushes)
	assert.InDelta(t, 300, perf.TotalStaked, 1e-9)
	assert.InDelta(t, 266.67, perf.TotalReturned, 1e-9)
	assert.InDelta(t, -33.33, perf.NetProfit, 1e-9)
	assert.InDelta(t, -33.33/300, perf.ROI, 1e-9)
	// Pushes are excluded from the win rate.
	assert.InDelta(t, 0.5, perf.WinRate, 1e-9)
	assert.InDelta(t, 1.6667, perf.AvgPrice, 0.001)
}

func TestPerformanceWindowFiltersHistory(t *testing.T) {
	l := New(testConfig(), testLogger())

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return base }
	play(t, l, "evt-old", 100, domain.OutcomeLoss, 0)

	l.now = func() time.Time { return base.AddDate(0, 0, 30) }
	play(t, l, "evt-new", 100, domain.OutcomeWin, 166.67)

	all := l.Performance(0)
	assert.Equal(t, 2, all.TotalBets)

	recent := l.Performance(7)
	assert.Equal(t, 1, recent.TotalBets)
	assert.Equal(t, 1, recent.Wins)
}

func TestPerformanceSharpeRequiresTwoActiveDays(t *testing.T) {
	l := New(testConfig(), testLogger())

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return base }
	play(t, l, "evt-1", 100, domain.OutcomeWin, 166.67)

	// One active day: undefined, reported as zero.
	assert.Zero(t, l.Performance(0).SharpeRatio)

	l.now = func() time.Time { return base.AddDate(0, 0, 1) }
	play(t, l, "evt-2", 100, domain.OutcomeLoss, 0)
	l.now = func() time.Time { return base.AddDate(0, 0, 2) }
	play(t, l, "evt-3", 100, domain.OutcomeWin, 166.67)

	assert.NotZero(t, l.Performance(0).SharpeRatio)
}

func TestPerformanceMaxDrawdown(t *testing.T) {
	l := New(testConfig(), testLogger())

	// Win to a peak, then two losses.
	play(t, l, "evt-1", 500, domain.OutcomeWin, 1000) // bankroll 10500
	play(t, l, "evt-2", 500, domain.OutcomeLoss, 0)   // 10000
	play(t, l, "evt-3", 500, domain.OutcomeLoss, 0)   // 9500

	perf := l.Performance(0)
	assert.InDelta(t, (10500.0-9500.0)/10500.0, perf.MaxDrawdown, 1e-9)

	assert.InDelta(t, 10500, l.PeakBankroll(), 1e-9)
}

func TestPerformanceWindowedMaxDrawdown(t *testing.T) {
	l := New(testConfig(), testLogger())

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return base }
	play(t, l, "evt-1", 500, domain.OutcomeWin, 1000) // bankroll 10500
	play(t, l, "evt-2", 500, domain.OutcomeLoss, 0)   // 10000
	play(t, l, "evt-3", 500, domain.OutcomeLoss, 0)   // 9500

	l.now = func() time.Time { return base.AddDate(0, 0, 30) }
	play(t, l, "evt-4", 500, domain.OutcomeWin, 1000) // 10000
	play(t, l, "evt-5", 500, domain.OutcomeLoss, 0)   // 9500

	all := l.Performance(0)
	assert.InDelta(t, (10500.0-9500.0)/10500.0, all.MaxDrawdown, 1e-9)

	// The deep early decline falls outside a 7-day window; only the later,
	// shallower one remains.
	recent := l.Performance(7)
	assert.InDelta(t, (10000.0-9500.0)/10000.0, recent.MaxDrawdown, 1e-9)
}
