package domain

import "time"

// MarketType is the kind of market a quote or prediction refers to.
type MarketType string

const (
	MarketMoneyline MarketType = "moneyline"
	MarketSpread    MarketType = "spread"
	MarketTotal     MarketType = "total"
)

// MarketKey is the join key between predictions and quotes: one event, one
// market type, one line. Line is zero for markets without a line (moneyline).
type MarketKey struct {
	EventID string
	Market  MarketType
	Line    float64
}

// PriceQuote is one bookmaker's price for a (event, market, line) triple,
// captured at a point in time. Immutable once captured; staleness is measured
// from CapturedAt.
type PriceQuote struct {
	EventID    string
	Bookmaker  string
	Market     MarketType
	Line       float64
	American   int // signed American-style price, e.g. -150, +120
	CapturedAt time.Time
}

// Key returns the quote's join key.
func (q PriceQuote) Key() MarketKey {
	return MarketKey{EventID: q.EventID, Market: q.Market, Line: q.Line}
}

// DecimalPrice converts the American price to a decimal payout multiple
// (gross return per unit staked, stake included). A zero American price
// yields 0, which downstream validation rejects.
func (q PriceQuote) DecimalPrice() float64 {
	switch {
	case q.American > 0:
		return float64(q.American)/100 + 1
	case q.American < 0:
		return 100/float64(-q.American) + 1
	default:
		return 0
	}
}

// ImpliedProbability is the price's break-even probability, 1/decimal. It
// includes the bookmaker's margin. Returns 0 for an invalid price.
func (q PriceQuote) ImpliedProbability() float64 {
	d := q.DecimalPrice()
	if d <= 1 {
		return 0
	}
	return 1 / d
}
