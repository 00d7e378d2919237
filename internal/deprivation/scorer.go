package deprivation

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"depindex/internal/dataset"
)

// maxColumnWorkers bounds the per-indicator goroutines in the scorer. Only
// the independent column passes run concurrently; censoring and everything
// downstream needs the full matrix and runs after the group completes.
const maxColumnWorkers = 4

// NormalizeIndicators z-scores each indicator column for the
// visualization-facing normalized view. Threshold comparison never uses
// these values; thresholds are defined in raw units.
//
// Means and standard deviations (sample, n-1) are computed over non-missing
// values; missing values stay NaN. A constant column z-scores to zero.
func NormalizeIndicators(frame *dataset.Frame, indicators []string) (map[string][]float64, error) {
	normalized := make(map[string][]float64, len(indicators))
	for _, name := range indicators {
		col, ok := frame.Column(name)
		if !ok {
			return nil, fmt.Errorf("normalize: indicator column %s missing", name)
		}
		normalized[name] = zscore(col)
	}
	return normalized, nil
}

func zscore(values []float64) []float64 {
	sum := 0.0
	count := 0
	for _, v := range values {
		if !math.IsNaN(v) {
			sum += v
			count++
		}
	}
	out := make([]float64, len(values))
	if count < 2 {
		for i, v := range values {
			if math.IsNaN(v) {
				out[i] = math.NaN()
			}
		}
		return out
	}

	mean := sum / float64(count)
	ss := 0.0
	for _, v := range values {
		if !math.IsNaN(v) {
			ss += (v - mean) * (v - mean)
		}
	}
	std := math.Sqrt(ss / float64(count-1))

	for i, v := range values {
		switch {
		case math.IsNaN(v):
			out[i] = math.NaN()
		case std == 0:
			out[i] = 0
		default:
			out[i] = (v - mean) / std
		}
	}
	return out
}

// ComputeDeprivation builds the censored binary deprivation matrix. A zone
// is flagged on an indicator when its raw value meets or exceeds the
// threshold; missing values are never deprived. Zones whose deprivation
// share does not exceed the cutoff k have their whole row zeroed
// (AF censoring).
func ComputeDeprivation(ctx context.Context, frame *dataset.Frame, params Params) (*DeprivationMatrix, error) {
	indicators := params.Indicators()
	n := frame.NumRows()
	if n == 0 {
		return nil, fmt.Errorf("deprivation matrix: no zones")
	}

	flags := mat.NewDense(n, len(indicators), nil)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxColumnWorkers)
	for idx, name := range indicators {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			col, ok := frame.Column(name)
			if !ok {
				return fmt.Errorf("deprivation matrix: indicator column %s missing", name)
			}
			threshold := params.Thresholds[name]
			for z := 0; z < n; z++ {
				if v := col[z]; !math.IsNaN(v) && v >= threshold {
					flags.Set(z, idx, 1)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	shares := make([]int, n)
	for z := 0; z < n; z++ {
		count := 0
		for i := range indicators {
			if flags.At(z, i) == 1 {
				count++
			}
		}
		shares[z] = count
		if count <= params.Cutoff {
			for i := range indicators {
				flags.Set(z, i, 0)
			}
		}
	}

	return &DeprivationMatrix{
		Zones:      frame.Keys(),
		Indicators: indicators,
		Flags:      flags,
		Shares:     shares,
	}, nil
}

// ComputeNormalizedGap builds the g1 matrix: each entry is the relative
// distance above the threshold, (value - threshold) / threshold, with
// negative and missing results replaced by zero and the censored deprivation
// matrix applied elementwise. A censored zone contributes zero severity on
// every indicator regardless of its raw values.
func ComputeNormalizedGap(ctx context.Context, frame *dataset.Frame, dm *DeprivationMatrix, params Params) (*GapMatrix, error) {
	indicators := dm.Indicators
	n := frame.NumRows()
	if n != len(dm.Zones) {
		return nil, fmt.Errorf("normalized gap: %d frame rows vs %d matrix rows", n, len(dm.Zones))
	}

	gaps := mat.NewDense(n, len(indicators), nil)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxColumnWorkers)
	for idx, name := range indicators {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			col, ok := frame.Column(name)
			if !ok {
				return fmt.Errorf("normalized gap: indicator column %s missing", name)
			}
			threshold := params.Thresholds[name]
			for z := 0; z < n; z++ {
				gap := (col[z] - threshold) / threshold
				if math.IsNaN(gap) || gap < 0 {
					gap = 0
				}
				gaps.Set(z, idx, gap*dm.Flags.At(z, idx))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &GapMatrix{
		Zones:      frame.Keys(),
		Indicators: indicators,
		Data:       gaps,
	}, nil
}
