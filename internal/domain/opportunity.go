package domain

// Opportunity joins one event, one quote and one prediction into a candidate
// wager. ExpectedValue, Edge and ConfidenceScore are set by the detector;
// KellyFraction and RecommendedStake are filled in later by sizing and may be
// reduced by the risk gate before the opportunity is committed or discarded.
type Opportunity struct {
	Event      EventInfo
	Quote      PriceQuote
	Prediction Prediction

	ExpectedValue   float64 // profit per unit staked at the predicted probability
	Edge            float64 // predicted probability minus implied probability
	ConfidenceScore float64 // composite score in [0, 1]

	KellyFraction    float64
	RecommendedStake float64
}

// SameEvent reports whether two opportunities concern the same contest.
func (o Opportunity) SameEvent(other Opportunity) bool {
	return o.Event.ID == other.Event.ID
}
