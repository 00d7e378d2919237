package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"depindex/internal/config"
	"depindex/internal/dataset"
	"depindex/internal/deprivation"
	"depindex/internal/exporter"
)

func main() {
	configPath := flag.String("config", "", "path to YAML configuration (optional)")
	zonesPath := flag.String("zones", "", "cleaned per-zone CSV (overrides config)")
	travelPath := flag.String("travel", "", "travel metrics CSV (overrides config)")
	outputPath := flag.String("out", "", "extended output CSV (overrides config)")
	skipReports := flag.Bool("no-reports", false, "skip the summary report and diagnostics workbook")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *zonesPath != "" {
		cfg.Paths.ZonesCSV = *zonesPath
	}
	if *travelPath != "" {
		cfg.Paths.TravelCSV = *travelPath
	}
	if *outputPath != "" {
		cfg.Paths.OutputCSV = *outputPath
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	zones, err := dataset.LoadZones(cfg.Paths.ZonesCSV)
	if err != nil {
		slog.Error("Failed to load zone data", "error", err)
		os.Exit(1)
	}
	travel, err := dataset.LoadTravel(cfg.Paths.TravelCSV)
	if err != nil {
		slog.Error("Failed to load travel data", "error", err)
		os.Exit(1)
	}

	runner := deprivation.NewRunner(cfg.Params(), logger)

	ctx := context.Background()
	result, err := runner.Run(ctx, zones, travel)
	if err != nil {
		slog.Error("Pipeline run failed", "error", err)
		os.Exit(1)
	}

	if err := deprivation.SaveToCSV(result.Extended, cfg.Paths.OutputCSV); err != nil {
		slog.Error("Failed to write extended dataset", "error", err)
		os.Exit(1)
	}
	slog.Info("Wrote extended dataset",
		"path", cfg.Paths.OutputCSV,
		"zones", result.Extended.NumRows())

	if !*skipReports {
		timestamp := time.Now().Format("20060102")

		summaryPath := filepath.Join(cfg.Paths.ReportsDir, fmt.Sprintf("deprivation_summary_%s.txt", timestamp))
		if err := exporter.SaveSummaryReport(result, summaryPath); err != nil {
			slog.Error("Failed to write summary report", "error", err)
			os.Exit(1)
		}

		workbookPath := filepath.Join(cfg.Paths.ReportsDir, fmt.Sprintf("factor_diagnostics_%s.xlsx", timestamp))
		if err := exporter.SaveDiagnosticsWorkbook(result.Diagnostics, workbookPath); err != nil {
			slog.Error("Failed to write diagnostics workbook", "error", err)
			os.Exit(1)
		}

		slog.Info("Wrote diagnostic reports",
			"summary", summaryPath,
			"workbook", workbookPath)
	}

	printTopZones(result)
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func printTopZones(result *deprivation.Result) {
	type zone struct {
		zipcode string
		index   float64
		scaled  float64
	}
	zones := make([]zone, len(result.Index))
	for i, zip := range result.Extended.Keys() {
		zones[i] = zone{zipcode: zip, index: result.Index[i], scaled: result.IndexScaled[i]}
	}
	sort.Slice(zones, func(i, j int) bool {
		return zones[i].index > zones[j].index
	})

	n := 10
	if len(zones) < n {
		n = len(zones)
	}

	fmt.Println("\n=== MOST DEPRIVED ZONES ===")
	fmt.Println("Zipcode | WDI      | Scaled")
	fmt.Println("--------|----------|-------")
	for _, z := range zones[:n] {
		fmt.Printf("%-7s | %8.4f | %6.4f\n", z.zipcode, z.index, z.scaled)
	}
	fmt.Printf("\nAdjusted headcount (M0): %.4f, adjusted gap (M1): %.4f\n",
		result.AdjustedHeadcount, result.AdjustedGap)
}
