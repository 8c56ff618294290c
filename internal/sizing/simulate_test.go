package sizing

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulateReproducibleForFixedSeed(t *testing.T) {
	a := Simulate(rand.New(rand.NewSource(42)), 0.55, 2.0, 0.02, 10000, 100, 200)
	b := Simulate(rand.New(rand.NewSource(42)), 0.55, 2.0, 0.02, 10000, 100, 200)
	assert.Equal(t, a, b)

	c := Simulate(rand.New(rand.NewSource(7)), 0.55, 2.0, 0.02, 10000, 100, 200)
	assert.NotEqual(t, a.MeanFinal, c.MeanFinal)
}

func TestSimulateQuantileOrdering(t *testing.T) {
	res := Simulate(rand.New(rand.NewSource(1)), 0.55, 2.0, 0.02, 10000, 200, 500)
	require.Equal(t, 500, res.Runs)

	assert.LessOrEqual(t, res.Pct5Final, res.MedianFinal)
	assert.LessOrEqual(t, res.MedianFinal, res.Pct95Final)
	assert.GreaterOrEqual(t, res.RuinRate, 0.0)
	assert.LessOrEqual(t, res.RuinRate, 1.0)
}

func TestSimulatePositiveEdgeGrows(t *testing.T) {
	// p=0.55 at evens with a conservative fraction has positive log growth;
	// the mean terminal bankroll should beat the start.
	res := Simulate(rand.New(rand.NewSource(3)), 0.55, 2.0, 0.02, 10000, 500, 400)
	assert.Greater(t, res.MeanFinal, 10000.0)
	assert.Positive(t, res.MeanLogGrowth)
}

func TestSimulateOverbettingRuins(t *testing.T) {
	// Staking 60% of bankroll per bet at a thin edge is almost certain ruin.
	res := Simulate(rand.New(rand.NewSource(5)), 0.55, 2.0, 0.60, 10000, 300, 200)
	assert.Greater(t, res.RuinRate, 0.9)
	assert.Negative(t, res.MeanLogGrowth)
}

func TestSimulateDegenerateInputs(t *testing.T) {
	res := Simulate(rand.New(rand.NewSource(1)), 0.55, 2.0, 0.02, 0, 10, 10)
	assert.Zero(t, res.MeanFinal)
	assert.Zero(t, res.RuinRate)
}
