package deprivation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depindex/internal/dataset"
)

// pipelineFixture builds an eight-zone input where every indicator value is
// threshold*(1+gap), so the expected normalized gap matrix is exactly the
// gap table below.
func pipelineFixture(t *testing.T) (*dataset.Frame, []dataset.TravelObservation, [][5]float64) {
	t.Helper()

	// Columns: RTI_ratio, distance_to_CBD, non_offensive_crime,
	// time_to_CBD, violent_crime (indicator sort order)
	gaps := [][5]float64{
		{0.0, 0.0, 0.1, 0.2, 0.5},
		{0.3, 0.1, 0.4, 0.0, 0.0},
		{0.1, 0.4, 0.0, 0.5, 0.8},
		{0.6, 0.0, 0.2, 0.1, 0.1},
		{0.0, 0.7, 0.0, 0.0, 0.3},
		{0.2, 0.2, 0.6, 0.3, 0.0},
		{0.5, 0.0, 0.3, 0.0, 0.9},
		{0.0, 0.3, 0.0, 0.6, 0.2},
	}

	thresholds := DefaultThresholds()
	zones := []string{"60601", "60602", "60603", "60604", "60605", "60606", "60607", "60608"}

	n := len(zones)
	rent := make([]float64, n)
	income := make([]float64, n)
	violent := make([]float64, n)
	nonOffensive := make([]float64, n)
	travel := make([]dataset.TravelObservation, n)
	for z := 0; z < n; z++ {
		// Monthly income 5000, so rent 1500*(1+g) yields RTI 0.3*(1+g)
		income[z] = 60000
		rent[z] = 5000 * thresholds["RTI_ratio"] * (1 + gaps[z][0])
		violent[z] = thresholds["violent_crime"] * (1 + gaps[z][4])
		nonOffensive[z] = thresholds["non_offensive_crime"] * (1 + gaps[z][2])
		travel[z] = dataset.TravelObservation{
			Zipcode:       zones[z],
			TimeToCBD:     thresholds["time_to_CBD"] * (1 + gaps[z][3]),
			DistanceToCBD: thresholds["distance_to_CBD"] * (1 + gaps[z][1]),
		}
	}

	base := dataset.NewFrame(zones)
	require.NoError(t, base.SetColumn(RentColumn, rent))
	require.NoError(t, base.SetColumn(IncomeColumn, income))
	require.NoError(t, base.SetColumn("violent_crime", violent))
	require.NoError(t, base.SetColumn("non_offensive_crime", nonOffensive))

	return base, travel, gaps
}

func pipelineParams() Params {
	params := DefaultParams()
	params.Factors = 3
	return params
}

func TestRunnerRun(t *testing.T) {
	base, travel, gaps := pipelineFixture(t)
	runner := NewRunner(pipelineParams(), nil)

	result, err := runner.Run(context.Background(), base, travel)
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 8, result.Join.MergedZones)
	assert.Equal(t, 8, result.Extended.NumRows())
	assert.Len(t, result.Weights, 5)

	// Every value is at or above its threshold, so the gap columns are
	// exactly the fixture table
	indicators := pipelineParams().Indicators()
	for i, name := range indicators {
		col, ok := result.Extended.Column(name + GapSuffix)
		require.True(t, ok, "missing gap column for %s", name)
		for z := range col {
			assert.InDelta(t, gaps[z][i], col[z], 1e-9, "gap %s zone %d", name, z)
		}
	}

	// Gap sums are the fixture row sums
	gapSum, ok := result.Extended.Column(GapSumColumn)
	require.True(t, ok)
	for z := range gapSum {
		want := 0.0
		for i := range indicators {
			want += gaps[z][i]
		}
		assert.InDelta(t, want, gapSum[z], 1e-9)
	}
}

func TestRunnerRunScaledIndexBounds(t *testing.T) {
	base, travel, _ := pipelineFixture(t)
	runner := NewRunner(pipelineParams(), nil)

	result, err := runner.Run(context.Background(), base, travel)
	require.NoError(t, err)

	sawMin, sawMax := false, false
	for _, v := range result.IndexScaled {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
		if v == 0 {
			sawMin = true
		}
		if v == 1 {
			sawMax = true
		}
	}
	assert.True(t, sawMin, "least deprived zone should scale to 0")
	assert.True(t, sawMax, "most deprived zone should scale to 1")
}

func TestRunnerRunDeterministic(t *testing.T) {
	base, travel, _ := pipelineFixture(t)
	runner := NewRunner(pipelineParams(), nil)

	first, err := runner.Run(context.Background(), base, travel)
	require.NoError(t, err)
	second, err := runner.Run(context.Background(), base, travel)
	require.NoError(t, err)

	require.Equal(t, first.Extended.Columns(), second.Extended.Columns())
	for _, name := range first.Extended.Columns() {
		a, _ := first.Extended.Column(name)
		b, _ := second.Extended.Column(name)
		assert.Equal(t, a, b, "column %s differs between identical runs", name)
	}
	assert.Equal(t, first.Weights, second.Weights)
}

func TestRunnerRunInvalidParams(t *testing.T) {
	base, travel, _ := pipelineFixture(t)
	params := pipelineParams()
	params.Thresholds["violent_crime"] = 0
	runner := NewRunner(params, nil)

	_, err := runner.Run(context.Background(), base, travel)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validate configuration")
}

func TestRunnerRunMissingIndicatorColumn(t *testing.T) {
	base, travel, _ := pipelineFixture(t)
	params := pipelineParams()
	params.Thresholds["vacancy_rate"] = 0.1
	runner := NewRunner(params, nil)

	_, err := runner.Run(context.Background(), base, travel)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vacancy_rate")
}
