// Package exporter renders pipeline diagnostics for human inspection: a
// factor-analysis workbook (scree data, communalities, loadings) and a text
// summary report. Nothing downstream consumes these programmatically; the
// extended dataset CSV written by the deprivation package is the sole
// machine interface.
package exporter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"depindex/internal/factor"
)

const (
	screeSheet         = "Scree"
	communalitiesSheet = "Communalities"
	loadingsSheet      = "Loadings"
)

// SaveDiagnosticsWorkbook writes the factor-analysis diagnostics to an Excel
// workbook. The Scree sheet replaces the interactive scree plot: component
// number, eigenvalue and explained-variance share per row, ready for
// charting.
func SaveDiagnosticsWorkbook(diag *factor.Result, outputPath string) error {
	if diag == nil {
		return fmt.Errorf("no diagnostics to export")
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("create reports directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), screeSheet)
	if err := writeScreeSheet(f, diag); err != nil {
		return err
	}

	if _, err := f.NewSheet(communalitiesSheet); err != nil {
		return fmt.Errorf("create communalities sheet: %w", err)
	}
	if err := writeCommunalitiesSheet(f, diag); err != nil {
		return err
	}

	if _, err := f.NewSheet(loadingsSheet); err != nil {
		return fmt.Errorf("create loadings sheet: %w", err)
	}
	if err := writeLoadingsSheet(f, diag); err != nil {
		return err
	}

	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("save diagnostics workbook: %w", err)
	}
	return nil
}

func writeScreeSheet(f *excelize.File, diag *factor.Result) error {
	if err := f.SetSheetRow(screeSheet, "A1", &[]interface{}{"Component", "Eigenvalue", "ExplainedVariance"}); err != nil {
		return fmt.Errorf("write scree header: %w", err)
	}
	for i, ev := range diag.Eigenvalues {
		cell := fmt.Sprintf("A%d", i+2)
		row := []interface{}{i + 1, ev, diag.ExplainedVariance[i]}
		if err := f.SetSheetRow(screeSheet, cell, &row); err != nil {
			return fmt.Errorf("write scree row %d: %w", i+1, err)
		}
	}
	return nil
}

func writeCommunalitiesSheet(f *excelize.File, diag *factor.Result) error {
	if err := f.SetSheetRow(communalitiesSheet, "A1", &[]interface{}{"Indicator", "Communality"}); err != nil {
		return fmt.Errorf("write communalities header: %w", err)
	}
	for i, name := range diag.Indicators {
		cell := fmt.Sprintf("A%d", i+2)
		row := []interface{}{name, diag.Communalities[i]}
		if err := f.SetSheetRow(communalitiesSheet, cell, &row); err != nil {
			return fmt.Errorf("write communalities row %d: %w", i+1, err)
		}
	}
	return nil
}

func writeLoadingsSheet(f *excelize.File, diag *factor.Result) error {
	header := []interface{}{"Indicator"}
	for n := 1; n <= diag.NumFactors; n++ {
		header = append(header, fmt.Sprintf("Factor%d", n))
	}
	if err := f.SetSheetRow(loadingsSheet, "A1", &header); err != nil {
		return fmt.Errorf("write loadings header: %w", err)
	}
	for i, name := range diag.Indicators {
		row := []interface{}{name}
		for j := 0; j < diag.NumFactors; j++ {
			row = append(row, diag.Loading(i, j))
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(loadingsSheet, cell, &row); err != nil {
			return fmt.Errorf("write loadings row %d: %w", i+1, err)
		}
	}
	return nil
}
