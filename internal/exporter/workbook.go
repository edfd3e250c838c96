package exporter

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/bowutt26/dsci510-fall2025-final-project/internal/analysis"
	"github.com/bowutt26/dsci510-fall2025-final-project/internal/dataset"
)

// WorkbookData collects everything the summary workbook reports
type WorkbookData struct {
	Merged       []dataset.MergedRow
	Correlations []analysis.CorrelationResult
	MixedEffects []analysis.MixedEffectsResult
	Descriptive  []analysis.DescriptiveStats
}

// WriteSummaryWorkbook writes a single Excel workbook with one sheet per
// result set.
func WriteSummaryWorkbook(path string, data WorkbookData, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Merged Data"); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	if err := writeMergedSheet(f, "Merged Data", data.Merged); err != nil {
		return err
	}
	if err := writeCorrelationSheet(f, data.Correlations); err != nil {
		return err
	}
	if err := writeMixedEffectsSheet(f, data.MixedEffects); err != nil {
		return err
	}
	if err := writeDescriptiveSheet(f, data.Descriptive); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	logger.Info("summary workbook written",
		slog.String("path", path),
		slog.Int("merged_rows", len(data.Merged)))
	return nil
}

func writeMergedSheet(f *excelize.File, sheet string, rows []dataset.MergedRow) error {
	if err := setRow(f, sheet, 1, "State", "Year", "Disease", "Unit", "Avg PM2.5", "Avg Prevalence Rate"); err != nil {
		return err
	}
	for i, r := range rows {
		if err := setRow(f, sheet, i+2, r.State, r.Year, r.Disease, r.Unit, r.AvgPM25, r.AvgPrevalence); err != nil {
			return err
		}
	}
	return nil
}

func writeCorrelationSheet(f *excelize.File, results []analysis.CorrelationResult) error {
	const sheet = "Correlations"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}
	if err := setRow(f, sheet, 1, "Disease", "Spearman Rho", "P-Value", "N", "Status"); err != nil {
		return err
	}
	for i, r := range results {
		if r.Status != analysis.StatusSuccess {
			if err := setRow(f, sheet, i+2, r.Disease, "", "", r.N, r.Status); err != nil {
				return err
			}
			continue
		}
		if err := setRow(f, sheet, i+2, r.Disease, r.Rho, r.PValue, r.N, r.Status); err != nil {
			return err
		}
	}
	return nil
}

func writeMixedEffectsSheet(f *excelize.File, results []analysis.MixedEffectsResult) error {
	const sheet = "Mixed Effects"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}
	if err := setRow(f, sheet, 1,
		"Disease", "PM2.5 Slope", "Std Err", "CI Low", "CI High",
		"Intercept Var", "Residual Var", "N", "Groups", "Converged"); err != nil {
		return err
	}
	for i, r := range results {
		if err := setRow(f, sheet, i+2,
			r.Disease, r.Slope, r.StdErr, r.CILow, r.CIHigh,
			r.InterceptVar, r.ResidualVar, r.N, r.Groups, r.Converged); err != nil {
			return err
		}
	}
	return nil
}

func writeDescriptiveSheet(f *excelize.File, stats []analysis.DescriptiveStats) error {
	const sheet = "Descriptive Stats"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}
	if err := setRow(f, sheet, 1, "Disease", "N", "Mean", "Std Dev", "Min", "Max"); err != nil {
		return err
	}
	for i, s := range stats {
		if err := setRow(f, sheet, i+2, s.Disease, s.N, s.Mean, s.StdDev, s.Min, s.Max); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values ...interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("invalid row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", row, sheet, err)
	}
	return nil
}
