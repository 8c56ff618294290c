package domain

// PerformanceSnapshot aggregates settled positions. Recomputed on demand from
// settlement history, never persisted independently.
type PerformanceSnapshot struct {
	WindowDays int // 0 means all history

	TotalBets int
	Wins      int
	Losses    int
	Pushes    int

	TotalStaked   float64
	TotalReturned float64
	NetProfit     float64
	ROI           float64 // net profit / total staked
	WinRate       float64 // wins / (wins + losses); pushes excluded
	AvgPrice      float64 // mean decimal price across settled positions
	SharpeRatio   float64 // mean / sample stddev of daily normalized P&L
	MaxDrawdown   float64 // worst peak-to-trough bankroll decline
}

// DiversificationReport counts how open positions spread across events,
// participants and market types.
type DiversificationReport struct {
	UniqueEvents       int
	UniqueParticipants int
	ByMarket           map[MarketType]int
}
