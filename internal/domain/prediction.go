package domain

import "time"

// Prediction is a model's probability estimate for a (event, market, line)
// triple. Immutable.
type Prediction struct {
	EventID      string
	Market       MarketType
	Line         float64
	Probability  float64 // estimated win probability, in (0, 1)
	Confidence   float64 // model confidence in the estimate, in (0, 1)
	ModelVersion string
	GeneratedAt  time.Time
}

// Key returns the prediction's join key.
func (p Prediction) Key() MarketKey {
	return MarketKey{EventID: p.EventID, Market: p.Market, Line: p.Line}
}
