package portfolio

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/oddslab/bookengine/internal/domain"
)

// Performance aggregates settled positions into a snapshot. A positive
// windowDays restricts the history to settlements within that many days of
// now; zero means all history.
func (l *Ledger) Performance(windowDays int) domain.PerformanceSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	var cutoff time.Time
	if windowDays > 0 {
		cutoff = l.now().UTC().AddDate(0, 0, -windowDays)
	}

	snap := domain.PerformanceSnapshot{WindowDays: windowDays}
	var priceSum float64
	for _, pos := range l.history {
		if windowDays > 0 && pos.SettledAt != nil && pos.SettledAt.Before(cutoff) {
			continue
		}
		snap.TotalBets++
		snap.TotalStaked += pos.Stake
		snap.TotalReturned += pos.ActualPayout
		priceSum += pos.Opportunity.Quote.DecimalPrice()
		switch pos.Outcome {
		case domain.OutcomeWin:
			snap.Wins++
		case domain.OutcomeLoss:
			snap.Losses++
		case domain.OutcomePush:
			snap.Pushes++
		}
	}

	snap.NetProfit = snap.TotalReturned - snap.TotalStaked
	if snap.TotalStaked > 0 {
		snap.ROI = snap.NetProfit / snap.TotalStaked
	}
	if decided := snap.Wins + snap.Losses; decided > 0 {
		snap.WinRate = float64(snap.Wins) / float64(decided)
	}
	if snap.TotalBets > 0 {
		snap.AvgPrice = priceSum / float64(snap.TotalBets)
	}
	snap.SharpeRatio = l.sharpeLocked(windowDays)
	snap.MaxDrawdown = l.maxDrawdownLocked(windowDays)
	return snap
}

// sharpeLocked computes mean over sample stddev of per-day P&L normalized by
// the initial bankroll. Zero when fewer than two active days or zero
// variance, where the ratio is undefined.
func (l *Ledger) sharpeLocked(windowDays int) float64 {
	var cutoff string
	if windowDays > 0 {
		cutoff = l.now().UTC().AddDate(0, 0, -windowDays).Format("2006-01-02")
	}

	returns := make([]float64, 0, len(l.dailyPnL))
	for day, pnl := range l.dailyPnL {
		if cutoff != "" && day < cutoff {
			continue
		}
		returns = append(returns, pnl/l.cfg.InitialBankroll)
	}
	if len(returns) < 2 {
		return 0
	}

	mean := stat.Mean(returns, nil)
	std := stat.StdDev(returns, nil)
	if std == 0 {
		return 0
	}
	return mean / std
}

// maxDrawdownLocked is the worst peak-to-trough decline over the recorded
// bankroll series, restricted to samples inside the window when windowDays
// is positive.
func (l *Ledger) maxDrawdownLocked(windowDays int) float64 {
	var cutoff time.Time
	if windowDays > 0 {
		cutoff = l.now().UTC().AddDate(0, 0, -windowDays)
	}

	var peak, maxDD float64
	for _, pt := range l.series {
		if windowDays > 0 && pt.At.Before(cutoff) {
			continue
		}
		if pt.Bankroll > peak {
			peak = pt.Bankroll
		}
		if peak > 0 {
			if dd := (peak - pt.Bankroll) / peak; dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}
