package domain

// Action is the risk gate's recommendation for an opportunity. It is a closed
// set so orchestrator branching stays exhaustive.
type Action string

const (
	ActionBet         Action = "bet"
	ActionReduceStake Action = "reduce_stake"
	ActionSkip        Action = "skip"
)

// RiskAssessment is the per-opportunity output of the risk gate. Ephemeral:
// recomputed on every call, never stored.
type RiskAssessment struct {
	KellyFraction      float64
	MaxLossProbability float64 // probability the full stake is lost

	KellyRisk         float64
	CorrelationRisk   float64
	ConcentrationRisk float64
	LiquidityRisk     float64

	OverallScore float64
	Action       Action
}
