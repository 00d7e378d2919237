package deprivation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"depindex/internal/dataset"
	"depindex/internal/factor"
)

// Runner executes one deprivation-index pipeline run. Each stage is a pure
// function of the previous stage's table plus the immutable Params; the
// Runner only sequences them and logs.
type Runner struct {
	params Params
	logger *slog.Logger
}

// NewRunner creates a pipeline runner with the given configuration
func NewRunner(params Params, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{params: params, logger: logger}
}

// Result holds everything one pipeline run produced: the extended output
// table, the weight vector and factor diagnostics, join statistics, and the
// supplementary AF measures.
type Result struct {
	RunID  string
	Params Params
	Join   JoinStats

	Extended    *dataset.Frame
	Weights     []float64
	Diagnostics *factor.Result

	Index       []float64
	IndexScaled []float64
	GapSum      []float64

	AdjustedHeadcount float64 // M0
	AdjustedGap       float64 // M1

	Duration time.Duration
}

// Run processes one snapshot of input data into one output snapshot. The
// run aborts before producing a Result on any configuration, data, or
// numerical error; callers only persist output when Run succeeds.
func (r *Runner) Run(ctx context.Context, base *dataset.Frame, travel []dataset.TravelObservation) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := r.logger.With(slog.String("run_id", runID))

	if err := r.params.Validate(); err != nil {
		return nil, fmt.Errorf("validate configuration: %w", err)
	}

	logger.InfoContext(ctx, "starting deprivation index run",
		slog.Int("base_zones", base.NumRows()),
		slog.Int("travel_observations", len(travel)),
		slog.Int("indicators", len(r.params.Thresholds)),
		slog.Int("cutoff", r.params.Cutoff))

	merged, join, err := BuildRatios(base, travel, logger)
	if err != nil {
		return nil, fmt.Errorf("build ratios: %w", err)
	}
	if err := validateIndicators(merged, r.params); err != nil {
		return nil, err
	}

	indicators := r.params.Indicators()
	normalized, err := NormalizeIndicators(merged, indicators)
	if err != nil {
		return nil, err
	}

	dm, err := ComputeDeprivation(ctx, merged, r.params)
	if err != nil {
		return nil, fmt.Errorf("deprivation matrix: %w", err)
	}
	deprivedZones := 0
	for z := range dm.Zones {
		if dm.Shares[z] > r.params.Cutoff {
			deprivedZones++
		}
	}
	logger.InfoContext(ctx, "computed deprivation matrix",
		slog.Int("zones", len(dm.Zones)),
		slog.Int("deprived_zones", deprivedZones),
		slog.Int("censored_zones", len(dm.Zones)-deprivedZones))

	gap, err := ComputeNormalizedGap(ctx, merged, dm, r.params)
	if err != nil {
		return nil, fmt.Errorf("normalized gap: %w", err)
	}

	weights, diag, err := EstimateWeights(gap, r.params, logger)
	if err != nil {
		return nil, err
	}

	index, err := WeightedIndex(gap, weights)
	if err != nil {
		return nil, err
	}
	indexScaled, err := MinMaxScale(index)
	if err != nil {
		return nil, fmt.Errorf("scale index: %w", err)
	}

	gapSum := gap.RowSums()
	gapSumScaled, err := MinMaxScale(gapSum)
	if err != nil {
		return nil, fmt.Errorf("scale gap sum: %w", err)
	}

	extended, err := ExtendDataset(merged, Extension{
		Normalized:   normalized,
		Gap:          gap,
		GapSum:       gapSum,
		GapSumScaled: gapSumScaled,
		Index:        index,
		IndexScaled:  indexScaled,
	})
	if err != nil {
		return nil, fmt.Errorf("extend dataset: %w", err)
	}

	result := &Result{
		RunID:             runID,
		Params:            r.params,
		Join:              join,
		Extended:          extended,
		Weights:           weights,
		Diagnostics:       diag,
		Index:             index,
		IndexScaled:       indexScaled,
		GapSum:            gapSum,
		AdjustedHeadcount: AdjustedHeadcount(dm),
		AdjustedGap:       AdjustedGap(gap),
		Duration:          time.Since(start),
	}

	logger.InfoContext(ctx, "deprivation index run completed",
		slog.Int("zones", extended.NumRows()),
		slog.Int("columns", len(extended.Columns())),
		slog.Float64("adjusted_headcount", result.AdjustedHeadcount),
		slog.Float64("adjusted_gap", result.AdjustedGap),
		slog.Duration("duration", result.Duration))

	return result, nil
}
