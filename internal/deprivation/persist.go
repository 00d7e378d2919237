package deprivation

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"depindex/internal/dataset"
)

// SaveToCSV writes the extended dataset to outputPath as a complete
// replacement of any prior output. The file is written to a temporary
// sibling first and renamed into place, so a failed run never leaves a
// partial or corrupt output behind.
func SaveToCSV(frame *dataset.Frame, outputPath string) error {
	if frame == nil || frame.NumRows() == 0 {
		return fmt.Errorf("no zones to save")
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmpPath := outputPath + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}

	writer := csv.NewWriter(file)

	header := append([]string{"zipcode"}, frame.Columns()...)
	if err := writer.Write(header); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write CSV header: %w", err)
	}

	record := make([]string, len(header))
	for row := 0; row < frame.NumRows(); row++ {
		record[0] = frame.Key(row)
		for i, name := range frame.Columns() {
			record[i+1] = formatValue(frame.Value(name, row))
		}
		if err := writer.Write(record); err != nil {
			file.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("write CSV record for zone %s: %w", frame.Key(row), err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("flush CSV: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close output file: %w", err)
	}

	if err := os.Rename(tmpPath, outputPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace output file: %w", err)
	}
	return nil
}

// formatValue renders a cell; missing values become empty cells
func formatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
