package deprivation

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"depindex/internal/dataset"
)

// ErrDegenerateIndex indicates every zone produced the same raw index value,
// so min-max scaling is undefined. Surfaced as an explicit error instead of
// writing NaN into the output.
var ErrDegenerateIndex = errors.New("degenerate index distribution: min equals max")

// WeightedIndex computes the raw weighted deprivation index: the dot product
// of each zone's gap row with the weight vector.
func WeightedIndex(gap *GapMatrix, weights []float64) ([]float64, error) {
	if len(weights) != len(gap.Indicators) {
		return nil, fmt.Errorf("weighted index: %d weights for %d indicators", len(weights), len(gap.Indicators))
	}

	w := mat.NewVecDense(len(weights), weights)
	index := mat.NewVecDense(len(gap.Zones), nil)
	index.MulVec(gap.Data, w)

	out := make([]float64, len(gap.Zones))
	for z := range out {
		out[z] = index.AtVec(z)
	}
	return out, nil
}

// MinMaxScale rescales values into [0,1] using the global minimum and
// maximum across all zones in the run. Scaling zone-by-zone instead of
// globally would break the [0,1] invariant, so callers always pass the full
// zone set.
func MinMaxScale(values []float64) ([]float64, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("min-max scale: no values")
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		if math.IsNaN(v) {
			return nil, fmt.Errorf("min-max scale: NaN in index values")
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo == hi {
		return nil, fmt.Errorf("%w (%d zones, value %g)", ErrDegenerateIndex, len(values), lo)
	}

	scaled := make([]float64, len(values))
	for i, v := range values {
		scaled[i] = (v - lo) / (hi - lo)
	}
	return scaled, nil
}

// Extension bundles the derived columns appended to the merged dataset
type Extension struct {
	Normalized   map[string][]float64
	Gap          *GapMatrix
	GapSum       []float64
	GapSumScaled []float64
	Index        []float64
	IndexScaled  []float64
}

// ExtendDataset assembles the final output table: the merged ratio-builder
// columns followed by the per-indicator normalized view, the per-indicator
// gaps, the gap sum and its scaled version, and the weighted deprivation
// index and its scaled version.
func ExtendDataset(merged *dataset.Frame, ext Extension) (*dataset.Frame, error) {
	out := merged.Clone()

	for _, name := range ext.Gap.Indicators {
		col, ok := ext.Normalized[name]
		if !ok {
			return nil, fmt.Errorf("extend dataset: missing normalized column for %s", name)
		}
		if err := out.SetColumn(name+NormSuffix, col); err != nil {
			return nil, err
		}
	}

	for i, name := range ext.Gap.Indicators {
		col := make([]float64, len(ext.Gap.Zones))
		for z := range col {
			col[z] = ext.Gap.Data.At(z, i)
		}
		if err := out.SetColumn(name+GapSuffix, col); err != nil {
			return nil, err
		}
	}

	if err := out.SetColumn(GapSumColumn, ext.GapSum); err != nil {
		return nil, err
	}
	if err := out.SetColumn(IndexColumn, ext.Index); err != nil {
		return nil, err
	}
	if err := out.SetColumn(IndexScaledCol, ext.IndexScaled); err != nil {
		return nil, err
	}
	if err := out.SetColumn(GapSumScaledCol, ext.GapSumScaled); err != nil {
		return nil, err
	}

	return out, nil
}
