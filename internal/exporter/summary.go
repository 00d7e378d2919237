package exporter

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"depindex/internal/deprivation"
)

// SaveSummaryReport writes a human-readable summary of one pipeline run:
// run metadata, join statistics, index distribution statistics, the
// supplementary AF measures, and the most and least deprived zones.
func SaveSummaryReport(result *deprivation.Result, outputPath string) error {
	if result == nil || result.Extended == nil {
		return fmt.Errorf("no result to summarize")
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("create reports directory: %w", err)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create summary file: %w", err)
	}
	defer file.Close()

	stats := summarize(result.Index, result.Extended.Keys())
	ranked := rankZones(result)

	fmt.Fprintf(file, "Zone Deprivation Index - Summary Report\n")
	fmt.Fprintf(file, "=======================================\n\n")
	fmt.Fprintf(file, "Generated: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(file, "Run ID: %s\n", result.RunID)
	fmt.Fprintf(file, "Duration: %s\n\n", result.Duration)

	fmt.Fprintf(file, "DATASET OVERVIEW\n")
	fmt.Fprintf(file, "----------------\n")
	fmt.Fprintf(file, "Merged Zones: %d\n", result.Join.MergedZones)
	fmt.Fprintf(file, "Dropped Zones (no travel data): %d\n", result.Join.DroppedZones)
	fmt.Fprintf(file, "Dropped Travel Zones (no base record): %d\n", result.Join.DroppedTravelZones)
	fmt.Fprintf(file, "Travel Observations: %d\n", result.Join.TravelObservations)
	fmt.Fprintf(file, "Indicators: %d\n", len(result.Params.Thresholds))
	fmt.Fprintf(file, "Cutoff k: %d\n\n", result.Params.Cutoff)

	fmt.Fprintf(file, "WEIGHTED DEPRIVATION INDEX\n")
	fmt.Fprintf(file, "--------------------------\n")
	fmt.Fprintf(file, "Mean: %.4f\n", stats.mean)
	fmt.Fprintf(file, "Median: %.4f\n", stats.median)
	fmt.Fprintf(file, "Std Dev: %.4f\n", stats.stdDev)
	fmt.Fprintf(file, "Min: %.4f (%s)\n", stats.min, stats.minZone)
	fmt.Fprintf(file, "Max: %.4f (%s)\n\n", stats.max, stats.maxZone)

	fmt.Fprintf(file, "AF MEASURES\n")
	fmt.Fprintf(file, "-----------\n")
	fmt.Fprintf(file, "Adjusted Headcount Ratio (M0): %.4f\n", result.AdjustedHeadcount)
	fmt.Fprintf(file, "Adjusted Deprivation Gap (M1): %.4f\n\n", result.AdjustedGap)

	fmt.Fprintf(file, "FACTOR ANALYSIS\n")
	fmt.Fprintf(file, "---------------\n")
	fmt.Fprintf(file, "Factors: %d, Rotation: %s\n", result.Diagnostics.NumFactors, result.Diagnostics.Rotation)
	fmt.Fprintf(file, "Eigenvalues:")
	for _, ev := range result.Diagnostics.Eigenvalues {
		fmt.Fprintf(file, " %.4f", ev)
	}
	fmt.Fprintf(file, "\nCommunalities:\n")
	for i, name := range result.Diagnostics.Indicators {
		fmt.Fprintf(file, "  %-22s %.4f\n", name, result.Diagnostics.Communalities[i])
	}
	fmt.Fprintf(file, "\n")

	n := 10
	if len(ranked) < n {
		n = len(ranked)
	}

	fmt.Fprintf(file, "TOP %d MOST DEPRIVED ZONES\n", n)
	fmt.Fprintf(file, "--------------------------\n")
	for i := 0; i < n; i++ {
		z := ranked[len(ranked)-1-i]
		fmt.Fprintf(file, "%2d. %s: wdi=%.4f scaled=%.4f\n", i+1, z.zipcode, z.index, z.scaled)
	}
	fmt.Fprintf(file, "\n")

	fmt.Fprintf(file, "TOP %d LEAST DEPRIVED ZONES\n", n)
	fmt.Fprintf(file, "---------------------------\n")
	for i := 0; i < n; i++ {
		z := ranked[i]
		fmt.Fprintf(file, "%2d. %s: wdi=%.4f scaled=%.4f\n", i+1, z.zipcode, z.index, z.scaled)
	}

	return nil
}

type zoneScore struct {
	zipcode string
	index   float64
	scaled  float64
}

func rankZones(result *deprivation.Result) []zoneScore {
	zones := make([]zoneScore, len(result.Index))
	for i, zip := range result.Extended.Keys() {
		zones[i] = zoneScore{
			zipcode: zip,
			index:   result.Index[i],
			scaled:  result.IndexScaled[i],
		}
	}
	sort.Slice(zones, func(i, j int) bool {
		return zones[i].index < zones[j].index
	})
	return zones
}

type indexStats struct {
	mean, median, stdDev float64
	min, max             float64
	minZone, maxZone     string
}

func summarize(values []float64, zones []string) indexStats {
	if len(values) == 0 {
		return indexStats{}
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	ss := 0.0
	for _, v := range values {
		ss += (v - mean) * (v - mean)
	}

	stats := indexStats{
		mean:    mean,
		stdDev:  math.Sqrt(ss / float64(len(values))),
		min:     values[0],
		max:     values[0],
		minZone: zones[0],
		maxZone: zones[0],
	}
	for i, v := range values {
		if v < stats.min {
			stats.min = v
			stats.minZone = zones[i]
		}
		if v > stats.max {
			stats.max = v
			stats.maxZone = zones[i]
		}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	stats.median = sorted[len(sorted)/2]
	if len(sorted)%2 == 0 {
		stats.median = (sorted[len(sorted)/2-1] + sorted[len(sorted)/2]) / 2
	}

	return stats
}
