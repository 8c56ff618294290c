package domain

// PortfolioState is a read-only snapshot of the ledger's state. The ledger is
// the only writer; every other component receives a copy and must not assume
// it stays current.
//
// Invariants maintained by the ledger:
//
//	AvailableBalance = TotalBankroll - TotalExposure - withdrawals in flight
//	TotalExposure    = sum of open position stakes
type PortfolioState struct {
	TotalBankroll    float64
	AvailableBalance float64
	OpenPositions    []Position
	TotalExposure    float64
	RiskUsedToday    float64
	DailyRiskCap     float64
}

// EventExposure is the total open stake against one event.
func (s PortfolioState) EventExposure(eventID string) float64 {
	var total float64
	for _, p := range s.OpenPositions {
		if p.Opportunity.Event.ID == eventID {
			total += p.Stake
		}
	}
	return total
}

// ParticipantExposure is the total open stake on events involving the given
// participant.
func (s PortfolioState) ParticipantExposure(name string) float64 {
	var total float64
	for _, p := range s.OpenPositions {
		if p.Opportunity.Event.HasParticipant(name) {
			total += p.Stake
		}
	}
	return total
}

// RemainingDailyRisk is the unspent part of today's risk budget, never
// negative.
func (s PortfolioState) RemainingDailyRisk() float64 {
	remaining := s.DailyRiskCap - s.RiskUsedToday
	if remaining < 0 {
		return 0
	}
	return remaining
}
