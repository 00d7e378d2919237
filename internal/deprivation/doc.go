// Package deprivation implements a multi-dimensional deprivation index for
// geographic zones following the Alkire-Foster (AF) methodology.
//
// The pipeline runs four sequential stages, each a pure function of the
// previous stage's table plus an immutable Params value:
//
//  1. Ratio Builder (ratios.go): derives the rent-to-income ratio,
//     mean-aggregates travel observations per zone, and inner-joins the
//     travel metrics onto the base dataset.
//  2. Deprivation Scorer (scorer.go): flags each zone deprived on an
//     indicator when its raw value meets the threshold, counts the
//     deprivation share, censors zones whose share does not exceed the
//     cutoff k, and computes the normalized-gap severity matrix.
//  3. Weight Estimator (weights.go): factor-analyzes the gap matrix (see
//     depindex/internal/factor) and sums loadings across retained factors
//     into one weight per indicator.
//  4. Index Aggregator (aggregate.go): dot product of gap rows with the
//     weight vector, global min-max scaling, and assembly of the extended
//     output table.
//
// Key invariants:
//
//   - A zone with deprivation share <= k has zero flags and zero gaps on
//     every indicator, regardless of raw values (AF censoring).
//   - A zone below an indicator's threshold, or with a missing value, has
//     zero gap on that indicator.
//   - Scaled index values use the run's global minimum and maximum, so the
//     extreme zones map to exactly 0 and 1.
//
// Supporting files: measures.go (adjusted headcount M0, adjusted gap M1,
// power gap), persist.go (atomic CSV replacement), validate.go, and
// pipeline.go (the Runner sequencing the stages).
//
// Usage:
//
//	runner := deprivation.NewRunner(deprivation.DefaultParams(), slog.Default())
//	result, err := runner.Run(ctx, zones, travel)
//	if err != nil {
//	    return err
//	}
//	err = deprivation.SaveToCSV(result.Extended, "data/processed_data.csv")
package deprivation
