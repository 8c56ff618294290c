package portfolio

import (
	"log/slog"
	"sort"

	"github.com/oddslab/bookengine/internal/domain"
)

// Optimize greedily selects the subset of candidates that fits the exposure
// caps. Candidates are walked in descending expected-value order; one is
// admitted only if the running totals stay within the total, per-event and
// per-participant exposure caps and the position count stays under the
// configured maximum. Existing open positions count toward every total.
func (l *Ledger) Optimize(candidates []domain.Opportunity) []domain.Opportunity {
	l.mu.Lock()
	defer l.mu.Unlock()

	sorted := make([]domain.Opportunity, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ExpectedValue > sorted[j].ExpectedValue
	})

	exposure := l.totalExposureLocked()
	eventTotals := make(map[string]float64)
	participantTotals := make(map[string]float64)
	for _, pos := range l.open {
		eventTotals[pos.Opportunity.Event.ID] += pos.Stake
		if home := pos.Opportunity.Event.HomeTeam; home != "" {
			participantTotals[home] += pos.Stake
		}
		if away := pos.Opportunity.Event.AwayTeam; away != "" {
			participantTotals[away] += pos.Stake
		}
	}
	count := len(l.open)

	totalCap := l.cfg.MaxTotalExposure * l.bankroll
	eventCap := l.cfg.MaxEventExposure * l.bankroll
	participantCap := l.cfg.MaxParticipantExposure * l.bankroll

	selected := make([]domain.Opportunity, 0, len(sorted))
	for _, cand := range sorted {
		if count >= l.cfg.MaxPositions {
			break
		}
		stake := cand.RecommendedStake
		if stake <= 0 {
			continue
		}
		if exposure+stake > totalCap {
			continue
		}
		if eventTotals[cand.Event.ID]+stake > eventCap {
			continue
		}
		home, away := cand.Event.HomeTeam, cand.Event.AwayTeam
		if participantTotals[home]+stake > participantCap ||
			participantTotals[away]+stake > participantCap {
			continue
		}

		exposure += stake
		eventTotals[cand.Event.ID] += stake
		if home != "" {
			participantTotals[home] += stake
		}
		if away != "" {
			participantTotals[away] += stake
		}
		count++
		selected = append(selected, cand)
	}

	l.logger.Debug("optimized candidate set",
		slog.Int("candidates", len(candidates)),
		slog.Int("selected", len(selected)),
		slog.Float64("projected_exposure", exposure),
	)
	return selected
}
