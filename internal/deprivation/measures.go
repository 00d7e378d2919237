package deprivation

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Supplementary AF measures. These are not part of the extended output table
// but are reported for policy analysis alongside the index.

// PowerGap raises every gap entry to the given power (matrix g^alpha).
// Larger exponents weight the most deprived zones more heavily, which
// policymakers use to target the worst-off neighborhoods first.
func PowerGap(gap *GapMatrix, alpha float64) *GapMatrix {
	n, p := gap.Data.Dims()
	powered := mat.NewDense(n, p, nil)
	for z := 0; z < n; z++ {
		for i := 0; i < p; i++ {
			powered.Set(z, i, math.Pow(gap.Data.At(z, i), alpha))
		}
	}
	return &GapMatrix{
		Zones:      gap.Zones,
		Indicators: gap.Indicators,
		Data:       powered,
	}
}

// AdjustedHeadcount computes M0, the adjusted headcount ratio: total
// censored deprivation flags over (deprived zones x indicator count).
// Returns 0 when no zone survives censoring.
func AdjustedHeadcount(dm *DeprivationMatrix) float64 {
	n, p := dm.Flags.Dims()
	deprived := 0
	total := 0.0
	for z := 0; z < n; z++ {
		rowSum := 0.0
		for i := 0; i < p; i++ {
			rowSum += dm.Flags.At(z, i)
		}
		if rowSum > 0 {
			deprived++
		}
		total += rowSum
	}
	if deprived == 0 {
		return 0
	}
	return total / (float64(deprived) * float64(p))
}

// AdjustedGap computes M1, the adjusted deprivation gap: the average
// normalized gap over zones with any censored deprivation. Unlike M0 it
// satisfies monotonicity: deepening an existing deprivation raises it.
func AdjustedGap(gap *GapMatrix) float64 {
	n, p := gap.Data.Dims()
	deprived := 0
	total := 0.0
	for z := 0; z < n; z++ {
		rowSum := 0.0
		for i := 0; i < p; i++ {
			rowSum += gap.Data.At(z, i)
		}
		if rowSum > 0 {
			deprived++
		}
		total += rowSum
	}
	if deprived == 0 {
		return 0
	}
	return total / (float64(deprived) * float64(p))
}
