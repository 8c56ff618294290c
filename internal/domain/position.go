package domain

import "time"

// Outcome is the settlement result of a position.
type Outcome string

const (
	OutcomePending Outcome = "pending"
	OutcomeWin     Outcome = "win"
	OutcomeLoss    Outcome = "loss"
	OutcomePush    Outcome = "push"
)

// Position is a committed stake against one opportunity. Created by the
// ledger, mutated only on settlement, and immutable once archived.
type Position struct {
	ID              string
	Opportunity     Opportunity
	Stake           float64
	PotentialPayout float64 // stake x decimal price
	PlacedAt        time.Time
	Outcome         Outcome
	ActualPayout    float64
	SettledAt       *time.Time
}

// Settled reports whether the position has reached a terminal outcome.
func (p Position) Settled() bool {
	return p.Outcome != OutcomePending
}
