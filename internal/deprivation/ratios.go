package deprivation

import (
	"fmt"
	"log/slog"
	"math"

	"depindex/internal/dataset"
)

// BuildRatios derives composite indicator columns on the base dataset and
// merges the travel metrics into it.
//
// The rent-to-income ratio is monthly rent over monthly income; a zone with
// zero or missing income gets NaN, which the scorer later treats as
// non-deprived. Travel observations are mean-aggregated per zipcode and
// joined with strict inner-join semantics: zones absent from either source
// are dropped so that downstream means and min/max scaling see only complete
// records.
func BuildRatios(base *dataset.Frame, travel []dataset.TravelObservation, logger *slog.Logger) (*dataset.Frame, JoinStats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	stats := JoinStats{TravelObservations: len(travel)}

	rent, ok := base.Column(RentColumn)
	if !ok {
		return nil, stats, fmt.Errorf("base dataset missing %s column", RentColumn)
	}
	income, ok := base.Column(IncomeColumn)
	if !ok {
		return nil, stats, fmt.Errorf("base dataset missing %s column", IncomeColumn)
	}

	ratios := make([]float64, base.NumRows())
	for i := range ratios {
		ratios[i] = rentToIncome(rent[i], income[i])
	}

	extended := base.Clone()
	if err := extended.SetColumn(RatioColumn, ratios); err != nil {
		return nil, stats, err
	}

	times, distances := aggregateTravel(travel)

	// Inner join on zipcode
	var keep []int
	for row, zip := range extended.Keys() {
		if _, ok := times[zip]; ok {
			keep = append(keep, row)
		}
	}
	stats.MergedZones = len(keep)
	stats.DroppedZones = extended.NumRows() - len(keep)

	baseZones := make(map[string]struct{}, extended.NumRows())
	for _, zip := range extended.Keys() {
		baseZones[zip] = struct{}{}
	}
	for zip := range times {
		if _, ok := baseZones[zip]; !ok {
			stats.DroppedTravelZones++
		}
	}

	if len(keep) == 0 {
		return nil, stats, fmt.Errorf("inner join produced no zones: %d base zones, %d travel zones share no keys",
			extended.NumRows(), len(times))
	}

	merged := extended.Select(keep)
	timeCol := make([]float64, merged.NumRows())
	distCol := make([]float64, merged.NumRows())
	for row, zip := range merged.Keys() {
		timeCol[row] = times[zip]
		distCol[row] = distances[zip]
	}
	if err := merged.SetColumn(TimeColumn, timeCol); err != nil {
		return nil, stats, err
	}
	if err := merged.SetColumn(DistanceColumn, distCol); err != nil {
		return nil, stats, err
	}

	logger.Info("merged base and travel datasets",
		slog.Int("merged_zones", stats.MergedZones),
		slog.Int("dropped_zones", stats.DroppedZones),
		slog.Int("dropped_travel_zones", stats.DroppedTravelZones),
		slog.Int("travel_observations", stats.TravelObservations))

	return merged, stats, nil
}

// rentToIncome computes monthly rent over monthly income
func rentToIncome(rent, annualIncome float64) float64 {
	if math.IsNaN(rent) || math.IsNaN(annualIncome) || annualIncome == 0 {
		return math.NaN()
	}
	return rent / (annualIncome / 12)
}

// aggregateTravel computes per-zone arithmetic means of the travel metrics,
// skipping unparsable observations per metric
func aggregateTravel(travel []dataset.TravelObservation) (times, distances map[string]float64) {
	timeSums := make(map[string]float64)
	timeCounts := make(map[string]int)
	distSums := make(map[string]float64)
	distCounts := make(map[string]int)
	seen := make(map[string]struct{})

	for _, obs := range travel {
		if obs.Zipcode == "" {
			continue
		}
		seen[obs.Zipcode] = struct{}{}
		if !math.IsNaN(obs.TimeToCBD) {
			timeSums[obs.Zipcode] += obs.TimeToCBD
			timeCounts[obs.Zipcode]++
		}
		if !math.IsNaN(obs.DistanceToCBD) {
			distSums[obs.Zipcode] += obs.DistanceToCBD
			distCounts[obs.Zipcode]++
		}
	}

	times = make(map[string]float64, len(seen))
	distances = make(map[string]float64, len(seen))
	for zip := range seen {
		times[zip] = meanOrNaN(timeSums[zip], timeCounts[zip])
		distances[zip] = meanOrNaN(distSums[zip], distCounts[zip])
	}
	return times, distances
}

func meanOrNaN(sum float64, count int) float64 {
	if count == 0 {
		return math.NaN()
	}
	return sum / float64(count)
}
