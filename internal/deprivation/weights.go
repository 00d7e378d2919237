package deprivation

import (
	"fmt"
	"log/slog"
	"math"

	"depindex/internal/factor"
)

// EstimateWeights derives one weight per indicator from the normalized-gap
// matrix. The gap matrix is factor-analyzed (PCA extraction plus the
// configured rotation) and each indicator's loadings are summed across the
// retained factors.
//
// The summed weights are not rescaled to sum to 1 by default; this preserves
// relative factor importance and matches the source methodology. Set
// Params.NormalizeWeights to opt into rescaling.
func EstimateWeights(gap *GapMatrix, params Params, logger *slog.Logger) ([]float64, *factor.Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	diag, err := factor.Analyze(gap.Data, gap.Indicators, params.Factors, params.Rotation)
	if err != nil {
		return nil, nil, fmt.Errorf("estimate weights: %w", err)
	}

	weights := make([]float64, len(gap.Indicators))
	for i := range gap.Indicators {
		sum := 0.0
		for f := 0; f < params.Factors; f++ {
			sum += diag.Loading(i, f)
		}
		weights[i] = sum
	}

	if params.NormalizeWeights {
		if err := normalizeWeights(weights); err != nil {
			return nil, nil, fmt.Errorf("estimate weights: %w", err)
		}
	}

	logger.Info("estimated indicator weights",
		slog.Int("factors", params.Factors),
		slog.String("rotation", params.Rotation),
		slog.Bool("normalized", params.NormalizeWeights),
		slog.Int("rotation_iterations", diag.RotationIterations),
		slog.Any("weights", weightMap(gap.Indicators, weights)))

	return weights, diag, nil
}

// normalizeWeights rescales by the sum of absolute weights so the
// magnitudes sum to 1
func normalizeWeights(weights []float64) error {
	total := 0.0
	for _, w := range weights {
		total += math.Abs(w)
	}
	if total == 0 {
		return fmt.Errorf("cannot normalize all-zero weight vector")
	}
	for i := range weights {
		weights[i] /= total
	}
	return nil
}

func weightMap(indicators []string, weights []float64) map[string]float64 {
	m := make(map[string]float64, len(indicators))
	for i, name := range indicators {
		m[name] = weights[i]
	}
	return m
}
