package deprivation

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Params holds the configuration for one pipeline run. The indicator set and
// thresholds are immutable during the run; every stage receives the same
// Params value.
type Params struct {
	// Thresholds maps indicator name to its deprivation cutoff in raw units.
	// A zone is deprived on an indicator when its raw value meets or exceeds
	// the threshold.
	Thresholds map[string]float64 `json:"thresholds"`

	// Cutoff is the AF censoring parameter k: zones whose deprivation share
	// does not exceed it have all flags zeroed
	Cutoff int `json:"cutoff"`

	// Factors is the number of factors retained by the weight estimator
	Factors int `json:"factors"`

	// Rotation is the factor-rotation method (varimax, quartimax, none)
	Rotation string `json:"rotation"`

	// NormalizeWeights rescales the summed loadings to sum to 1. The default
	// path leaves weights un-normalized, preserving relative factor
	// importance as in the source methodology.
	NormalizeWeights bool `json:"normalize_weights"`
}

// Indicators returns the configured indicator names in deterministic
// (sorted) order. All matrices and output columns follow this order.
func (p Params) Indicators() []string {
	names := make([]string, 0, len(p.Thresholds))
	for name := range p.Thresholds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultThresholds returns the literature-derived deprivation cutoffs for
// the Chicago zip-code dataset
func DefaultThresholds() map[string]float64 {
	return map[string]float64{
		"violent_crime":       1114,   // 1st quantile
		"non_offensive_crime": 528.4,  // 1st quantile
		"RTI_ratio":           0.3,    // rent burden literature
		"time_to_CBD":         1200,   // commute literature
		"distance_to_CBD":     7273.2, // 1st quantile
	}
}

// DefaultParams returns the default run configuration: k=0 because the
// indicator set is small, five factors with varimax rotation, weights left
// un-normalized.
func DefaultParams() Params {
	return Params{
		Thresholds: DefaultThresholds(),
		Cutoff:     0,
		Factors:    5,
		Rotation:   "varimax",
	}
}

// DeprivationMatrix is the censored binary zones x indicators matrix: entry
// (z,i) is 1 when zone z is deprived on indicator i and the zone's
// deprivation share exceeds the cutoff k.
type DeprivationMatrix struct {
	Zones      []string
	Indicators []string
	Flags      *mat.Dense
	// Shares holds each zone's deprivation share before censoring
	Shares []int
}

// Flag returns the censored deprivation flag for zone row z, indicator i
func (dm *DeprivationMatrix) Flag(z, i int) float64 {
	return dm.Flags.At(z, i)
}

// GapMatrix is the normalized-gap matrix g1: entry (z,i) is the relative
// distance of zone z above indicator i's threshold, zero when the zone is
// not deprived or censored out.
type GapMatrix struct {
	Zones      []string
	Indicators []string
	Data       *mat.Dense
}

// Gap returns the normalized gap for zone row z, indicator i
func (g *GapMatrix) Gap(z, i int) float64 {
	return g.Data.At(z, i)
}

// RowSums returns per-zone sums across indicators (the g1_sum column)
func (g *GapMatrix) RowSums() []float64 {
	sums := make([]float64, len(g.Zones))
	for z := range g.Zones {
		total := 0.0
		for i := range g.Indicators {
			total += g.Data.At(z, i)
		}
		sums[z] = total
	}
	return sums
}

// JoinStats records the outcome of the inner join between the base dataset
// and the travel metrics. Dropped zones are documented behavior, not an
// error, but the counts are surfaced for logging and the summary report.
type JoinStats struct {
	MergedZones        int `json:"merged_zones"`
	DroppedZones       int `json:"dropped_zones"`        // base zones without travel data
	DroppedTravelZones int `json:"dropped_travel_zones"` // travel zones without base records
	TravelObservations int `json:"travel_observations"`
}

// Output column suffixes and names. The downstream visualization expects
// exactly these names.
const (
	NormSuffix      = "_norm"
	GapSuffix       = "_g1"
	GapSumColumn    = "g1_sum"
	GapSumScaledCol = "g1_sum_scaled"
	IndexColumn     = "wdi"
	IndexScaledCol  = "wdi_scaled"
	RatioColumn     = "RTI_ratio"

	RentColumn     = "RentPrice"
	IncomeColumn   = "hh_median_income"
	TimeColumn     = "time_to_CBD"
	DistanceColumn = "distance_to_CBD"
)
