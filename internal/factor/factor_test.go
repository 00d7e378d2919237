package factor

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// blockData builds observations driven by two latent factors: columns 0-1
// follow the first factor, columns 2-3 the second.
func blockData(n int) (*mat.Dense, []string) {
	rng := rand.New(rand.NewSource(7))
	data := mat.NewDense(n, 4, nil)
	for i := 0; i < n; i++ {
		f1 := rng.NormFloat64()
		f2 := rng.NormFloat64()
		data.Set(i, 0, f1+0.05*rng.NormFloat64())
		data.Set(i, 1, 0.9*f1+0.05*rng.NormFloat64())
		data.Set(i, 2, f2+0.05*rng.NormFloat64())
		data.Set(i, 3, 1.1*f2+0.05*rng.NormFloat64())
	}
	return data, []string{"w", "x", "y", "z"}
}

func TestAnalyzeDiagnostics(t *testing.T) {
	data, names := blockData(200)

	result, err := Analyze(data, names, 2, RotationVarimax)
	require.NoError(t, err)

	rows, cols := result.Loadings.Dims()
	assert.Equal(t, 4, rows)
	assert.Equal(t, 2, cols)
	assert.Equal(t, 200, result.NumObservations)

	// Eigenvalues descending, explained variance sums to 1
	require.Len(t, result.Eigenvalues, 4)
	for i := 1; i < len(result.Eigenvalues); i++ {
		assert.LessOrEqual(t, result.Eigenvalues[i], result.Eigenvalues[i-1])
	}
	total := 0.0
	for _, share := range result.ExplainedVariance {
		total += share
	}
	assert.InDelta(t, 1.0, total, 1e-9)

	// Correlation-scale communalities stay near or below 1
	require.Len(t, result.Communalities, 4)
	for i, c := range result.Communalities {
		assert.Greater(t, c, 0.5, "indicator %s should be well explained", names[i])
		assert.Less(t, c, 1.05)
	}
}

func TestAnalyzeRotatedStructure(t *testing.T) {
	data, names := blockData(200)

	for _, rotation := range []string{RotationVarimax, RotationQuartimax} {
		t.Run(rotation, func(t *testing.T) {
			result, err := Analyze(data, names, 2, rotation)
			require.NoError(t, err)

			// After rotation each indicator loads dominantly on one factor
			for i := 0; i < 4; i++ {
				primary := math.Max(math.Abs(result.Loading(i, 0)), math.Abs(result.Loading(i, 1)))
				cross := math.Min(math.Abs(result.Loading(i, 0)), math.Abs(result.Loading(i, 1)))
				assert.Greater(t, primary, 0.8, "indicator %s primary loading", names[i])
				assert.Less(t, cross, 0.3, "indicator %s cross loading", names[i])
			}

			// Columns 0 and 1 share a factor, 2 and 3 share the other
			sameFactor := func(a, b int) bool {
				fa, fb := 0, 0
				if math.Abs(result.Loading(a, 1)) > math.Abs(result.Loading(a, 0)) {
					fa = 1
				}
				if math.Abs(result.Loading(b, 1)) > math.Abs(result.Loading(b, 0)) {
					fb = 1
				}
				return fa == fb
			}
			assert.True(t, sameFactor(0, 1))
			assert.True(t, sameFactor(2, 3))
			assert.False(t, sameFactor(0, 2))
		})
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	data, names := blockData(150)

	first, err := Analyze(data, names, 2, RotationVarimax)
	require.NoError(t, err)
	second, err := Analyze(data, names, 2, RotationVarimax)
	require.NoError(t, err)

	assert.True(t, mat.Equal(first.Loadings, second.Loadings))
	assert.Equal(t, first.Eigenvalues, second.Eigenvalues)
	assert.Equal(t, first.Communalities, second.Communalities)
}

func TestAnalyzeZeroVariance(t *testing.T) {
	data := mat.NewDense(10, 3, nil)
	for i := 0; i < 10; i++ {
		data.Set(i, 0, float64(i))
		data.Set(i, 1, 5.0) // constant
		data.Set(i, 2, float64(i*i))
	}

	_, err := Analyze(data, []string{"a", "b", "c"}, 2, RotationVarimax)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSingularCovariance)
	assert.Contains(t, err.Error(), "b")
	assert.Contains(t, err.Error(), "10 zones")
}

func TestAnalyzeRankDeficient(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	data := mat.NewDense(50, 3, nil)
	for i := 0; i < 50; i++ {
		a := rng.NormFloat64()
		b := rng.NormFloat64()
		data.Set(i, 0, a)
		data.Set(i, 1, b)
		data.Set(i, 2, a+b) // exact linear combination
	}

	_, err := Analyze(data, []string{"a", "b", "ab"}, 3, RotationVarimax)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSingularCovariance)

	// Two factors are still extractable
	_, err = Analyze(data, []string{"a", "b", "ab"}, 2, RotationVarimax)
	assert.NoError(t, err)
}

func TestAnalyzeValidation(t *testing.T) {
	data, names := blockData(30)

	tests := []struct {
		name     string
		data     *mat.Dense
		cols     []string
		nFactors int
		rotation string
	}{
		{"zero factors", data, names, 0, RotationVarimax},
		{"too many factors", data, names, 5, RotationVarimax},
		{"unknown rotation", data, names, 2, "oblimin"},
		{"name mismatch", data, []string{"a"}, 2, RotationVarimax},
		{"too few observations", mat.NewDense(1, 4, nil), names, 2, RotationVarimax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Analyze(tt.data, tt.cols, tt.nFactors, tt.rotation)
			assert.Error(t, err)
		})
	}
}

func TestAnalyzeNoRotation(t *testing.T) {
	data, names := blockData(100)

	result, err := Analyze(data, names, 2, RotationNone)
	require.NoError(t, err)
	assert.Equal(t, RotationNone, result.Rotation)
	assert.Equal(t, 0, result.RotationIterations)
}

func TestAnalyzeSingleFactor(t *testing.T) {
	data, names := blockData(100)

	result, err := Analyze(data, names, 1, RotationVarimax)
	require.NoError(t, err)

	rows, cols := result.Loadings.Dims()
	assert.Equal(t, 4, rows)
	assert.Equal(t, 1, cols)
	// Nothing to rotate against with one factor
	assert.Equal(t, 0, result.RotationIterations)
}

func TestValidRotation(t *testing.T) {
	assert.True(t, ValidRotation("varimax"))
	assert.True(t, ValidRotation("quartimax"))
	assert.True(t, ValidRotation("none"))
	assert.False(t, ValidRotation("oblimin"))
	assert.False(t, ValidRotation(""))
}
