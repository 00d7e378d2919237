package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
)

// Zone key column names accepted in input CSVs. The cleaned database uses
// zip_code while the travel matrix uses zipcode.
var zoneKeyColumns = []string{"zipcode", "zip_code"}

// TravelObservation is one raw travel-metric row. A zipcode may appear on
// multiple rows; observations are mean-aggregated per zone before joining.
type TravelObservation struct {
	Zipcode       string  `json:"zipcode"`
	TimeToCBD     float64 `json:"time_to_cbd"`
	DistanceToCBD float64 `json:"distance_to_cbd"`
}

// IsValid checks if the observation carries usable metrics
func (o TravelObservation) IsValid() bool {
	return o.Zipcode != "" &&
		!math.IsNaN(o.TimeToCBD) && o.TimeToCBD >= 0 &&
		!math.IsNaN(o.DistanceToCBD) && o.DistanceToCBD >= 0
}

// LoadZones reads the cleaned per-zone CSV into a frame. The zone key column
// may be named zipcode or zip_code; every other column is parsed as float64
// with empty or unparsable cells stored as NaN (treated as non-deprived
// downstream).
func LoadZones(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open zones CSV: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read zones header: %w", err)
	}

	keyIdx := findZoneKey(header)
	if keyIdx < 0 {
		return nil, fmt.Errorf("zones CSV %s: no zone key column (expected one of %v)", path, zoneKeyColumns)
	}

	var keys []string
	columns := make([][]float64, len(header))
	rowCount := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read zones row %d: %w", rowCount+1, err)
		}
		keys = append(keys, strings.TrimSpace(record[keyIdx]))
		for i := range header {
			if i == keyIdx {
				continue
			}
			columns[i] = append(columns[i], parseCell(record[i]))
		}
		rowCount++
	}

	frame := NewFrame(keys)
	for i, name := range header {
		if i == keyIdx {
			continue
		}
		if err := frame.SetColumn(strings.TrimSpace(name), columns[i]); err != nil {
			return nil, fmt.Errorf("zones CSV %s: %w", path, err)
		}
	}

	slog.Info("loaded zone records",
		slog.String("path", path),
		slog.Int("zones", frame.NumRows()),
		slog.Int("columns", len(frame.Columns())))

	return frame, nil
}

// LoadTravel reads the raw travel-metric CSV. Rows without a zipcode are
// skipped; metric cells that fail to parse become NaN and are dropped by the
// per-zone aggregation.
func LoadTravel(path string) ([]TravelObservation, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open travel CSV: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read travel header: %w", err)
	}

	keyIdx := findZoneKey(header)
	timeIdx := -1
	distIdx := -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case "time_to_CBD":
			timeIdx = i
		case "distance_to_CBD":
			distIdx = i
		}
	}
	if keyIdx < 0 || timeIdx < 0 || distIdx < 0 {
		return nil, fmt.Errorf("travel CSV %s: missing required columns (zipcode, time_to_CBD, distance_to_CBD)", path)
	}

	var observations []TravelObservation
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read travel row %d: %w", len(observations)+1, err)
		}

		zip := strings.TrimSpace(record[keyIdx])
		if zip == "" {
			continue
		}
		observations = append(observations, TravelObservation{
			Zipcode:       zip,
			TimeToCBD:     parseCell(record[timeIdx]),
			DistanceToCBD: parseCell(record[distIdx]),
		})
	}

	slog.Info("loaded travel observations",
		slog.String("path", path),
		slog.Int("observations", len(observations)))

	return observations, nil
}

func findZoneKey(header []string) int {
	for _, key := range zoneKeyColumns {
		for i, col := range header {
			if strings.TrimSpace(col) == key {
				return i
			}
		}
	}
	return -1
}

func parseCell(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return math.NaN()
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return math.NaN()
	}
	return value
}
