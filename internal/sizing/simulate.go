package sizing

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// SimulationResult summarizes a Monte Carlo bankroll simulation.
type SimulationResult struct {
	Runs          int
	BetsPerRun    int
	MeanFinal     float64
	MedianFinal   float64
	Pct5Final     float64
	Pct95Final    float64
	RuinRate      float64 // share of runs that dipped below 10% of the initial bankroll
	MeanLogGrowth float64 // realized per-bet log growth averaged over runs
}

// ruinFraction is the bankroll share below which a run counts as ruined.
const ruinFraction = 0.10

// Simulate runs repeated bet sequences staking fraction f of the current
// bankroll at the given price with true win probability p. The caller
// supplies the random source, so results are reproducible for a fixed seed.
func Simulate(rng *rand.Rand, p, decimalPrice, f, initialBankroll float64, betsPerRun, runs int) SimulationResult {
	if runs <= 0 || betsPerRun <= 0 || initialBankroll <= 0 {
		return SimulationResult{Runs: runs, BetsPerRun: betsPerRun}
	}

	b := decimalPrice - 1
	ruinLevel := initialBankroll * ruinFraction
	finals := make([]float64, 0, runs)
	ruined := 0
	var logGrowthSum float64

	for r := 0; r < runs; r++ {
		bankroll := initialBankroll
		hitRuin := false
		for i := 0; i < betsPerRun; i++ {
			stake := bankroll * f
			if stake <= 0 {
				break
			}
			if rng.Float64() < p {
				bankroll += stake * b
			} else {
				bankroll -= stake
			}
			if bankroll < ruinLevel {
				hitRuin = true
			}
		}
		if hitRuin {
			ruined++
		}
		if bankroll > 0 {
			logGrowthSum += math.Log(bankroll/initialBankroll) / float64(betsPerRun)
		}
		finals = append(finals, bankroll)
	}

	sort.Float64s(finals)
	return SimulationResult{
		Runs:          runs,
		BetsPerRun:    betsPerRun,
		MeanFinal:     stat.Mean(finals, nil),
		MedianFinal:   stat.Quantile(0.5, stat.Empirical, finals, nil),
		Pct5Final:     stat.Quantile(0.05, stat.Empirical, finals, nil),
		Pct95Final:    stat.Quantile(0.95, stat.Empirical, finals, nil),
		RuinRate:      float64(ruined) / float64(runs),
		MeanLogGrowth: logGrowthSum / float64(runs),
	}
}
