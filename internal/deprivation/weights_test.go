package deprivation

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func syntheticGap(nZones int) *GapMatrix {
	rng := rand.New(rand.NewSource(11))
	indicators := []string{"crime", "rent_burden", "travel_time"}
	zones := make([]string, nZones)
	data := mat.NewDense(nZones, len(indicators), nil)
	for z := 0; z < nZones; z++ {
		zones[z] = string(rune('a' + z%26))
		latent := rng.Float64()
		data.Set(z, 0, latent+0.1*rng.Float64())
		data.Set(z, 1, latent+0.1*rng.Float64())
		data.Set(z, 2, rng.Float64())
	}
	return &GapMatrix{Zones: zones, Indicators: indicators, Data: data}
}

func TestEstimateWeights(t *testing.T) {
	gap := syntheticGap(40)
	params := Params{
		Thresholds: map[string]float64{"crime": 1, "rent_burden": 1, "travel_time": 1},
		Factors:    2,
		Rotation:   "varimax",
	}

	weights, diag, err := EstimateWeights(gap, params, nil)
	require.NoError(t, err)
	require.NotNil(t, diag)

	require.Len(t, weights, 3)
	for i, w := range weights {
		assert.False(t, math.IsNaN(w), "weight %d is NaN", i)
	}

	// Each weight is the loading sum across the retained factors
	for i := range weights {
		sum := diag.Loading(i, 0) + diag.Loading(i, 1)
		assert.InDelta(t, sum, weights[i], 1e-12)
	}
}

func TestEstimateWeightsNormalized(t *testing.T) {
	gap := syntheticGap(40)
	params := Params{
		Thresholds:       map[string]float64{"crime": 1, "rent_burden": 1, "travel_time": 1},
		Factors:          2,
		Rotation:         "varimax",
		NormalizeWeights: true,
	}

	weights, _, err := EstimateWeights(gap, params, nil)
	require.NoError(t, err)

	total := 0.0
	for _, w := range weights {
		total += math.Abs(w)
	}
	assert.InDelta(t, 1.0, total, 1e-12)
}

func TestEstimateWeightsSingularGap(t *testing.T) {
	// A constant indicator column cannot be factor-analyzed
	gap := syntheticGap(40)
	for z := 0; z < 40; z++ {
		gap.Data.Set(z, 2, 0)
	}
	params := Params{
		Thresholds: map[string]float64{"crime": 1, "rent_burden": 1, "travel_time": 1},
		Factors:    2,
		Rotation:   "varimax",
	}

	_, _, err := EstimateWeights(gap, params, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "travel_time")
}
