package exporter

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/bowutt26/dsci510-fall2025-final-project/internal/analysis"
	"github.com/bowutt26/dsci510-fall2025-final-project/internal/dataset"
)

func TestWriteSummaryWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.xlsx")

	data := WorkbookData{
		Merged: []dataset.MergedRow{
			{State: "California", Year: 2016, Disease: "Asthma", Unit: "%", AvgPM25: 12.3, AvgPrevalence: 9.5},
		},
		Correlations: []analysis.CorrelationResult{
			{Disease: "Asthma", Rho: 0.8, PValue: 0.01, N: 20, Status: analysis.StatusSuccess},
			{Disease: "Cancer", N: 1, Status: analysis.StatusInsufficient},
		},
		MixedEffects: []analysis.MixedEffectsResult{
			{Disease: "Asthma", Slope: 0.4, StdErr: 0.1, CILow: 0.2, CIHigh: 0.6, N: 20, Groups: 5, Converged: true},
		},
		Descriptive: []analysis.DescriptiveStats{
			{Disease: "Asthma", N: 20, Mean: 9.5, StdDev: 1.1, Min: 7, Max: 12},
		},
	}

	require.NoError(t, WriteSummaryWorkbook(path, data, nil))
	assert.FileExists(t, path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t,
		[]string{"Merged Data", "Correlations", "Mixed Effects", "Descriptive Stats"},
		f.GetSheetList())

	state, err := f.GetCellValue("Merged Data", "A2")
	require.NoError(t, err)
	assert.Equal(t, "California", state)

	rho, err := f.GetCellValue("Correlations", "B2")
	require.NoError(t, err)
	assert.Equal(t, "0.8", rho)

	status, err := f.GetCellValue("Correlations", "E3")
	require.NoError(t, err)
	assert.Equal(t, analysis.StatusInsufficient, status)

	slope, err := f.GetCellValue("Mixed Effects", "B2")
	require.NoError(t, err)
	assert.Equal(t, "0.4", slope)
}

func TestWriteSummaryWorkbook_EmptyData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, WriteSummaryWorkbook(path, WorkbookData{}, nil))
	assert.FileExists(t, path)
}
