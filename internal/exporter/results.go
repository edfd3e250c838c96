package exporter

import (
	"strconv"

	"github.com/bowutt26/dsci510-fall2025-final-project/internal/analysis"
	"github.com/bowutt26/dsci510-fall2025-final-project/internal/dataset"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WritePM25Aggregate writes the (state, year) PM2.5 aggregate CSV
func (w *CSVWriter) WritePM25Aggregate(path string, rows []dataset.StatePM25) error {
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = []string{r.State, strconv.Itoa(r.Year), formatFloat(r.AvgPM25)}
	}
	return w.WriteSimpleCSV(path, []string{"state", "year", "avg_pm25"}, records)
}

// WriteChronicAggregate writes the (state, year, disease, unit) prevalence aggregate CSV
func (w *CSVWriter) WriteChronicAggregate(path string, rows []dataset.DiseaseRate) error {
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = []string{r.State, strconv.Itoa(r.Year), r.Disease, r.Unit, formatFloat(r.AvgPrevalence)}
	}
	return w.WriteSimpleCSV(path, []string{"state", "year", "disease", "unit", "avg_prevalence_rate"}, records)
}

// WriteGlobalAggregate writes the worldwide per-year PM2.5 aggregate CSV
func (w *CSVWriter) WriteGlobalAggregate(path string, rows []dataset.GlobalMean) error {
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = []string{strconv.Itoa(r.Year), formatFloat(r.AvgPM25)}
	}
	return w.WriteSimpleCSV(path, []string{"year", "avg_pm25"}, records)
}

// WriteMerged writes the merged U.S. dataset CSV
func (w *CSVWriter) WriteMerged(path string, rows []dataset.MergedRow) error {
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = []string{
			r.State, strconv.Itoa(r.Year), r.Disease, r.Unit,
			formatFloat(r.AvgPM25), formatFloat(r.AvgPrevalence),
		}
	}
	return w.WriteSimpleCSV(path,
		[]string{"state", "year", "disease", "unit", "avg_pm25", "avg_prevalence_rate"},
		records)
}

// WriteCorrelations writes the correlation results CSV
func (w *CSVWriter) WriteCorrelations(path string, results []analysis.CorrelationResult) error {
	records := make([][]string, len(results))
	for i, r := range results {
		rho, p := "", ""
		if r.Status == analysis.StatusSuccess {
			rho = formatFloat(r.Rho)
			p = formatFloat(r.PValue)
		}
		records[i] = []string{r.Disease, rho, p, strconv.Itoa(r.N), r.Status}
	}
	return w.WriteSimpleCSV(path, []string{"disease", "rho", "p_value", "n", "status"}, records)
}

// WriteMixedEffects writes the mixed-effects results CSV
func (w *CSVWriter) WriteMixedEffects(path string, results []analysis.MixedEffectsResult) error {
	records := make([][]string, len(results))
	for i, r := range results {
		records[i] = []string{
			r.Disease,
			formatFloat(r.Slope),
			formatFloat(r.StdErr),
			formatFloat(r.CILow),
			formatFloat(r.CIHigh),
			formatFloat(r.InterceptVar),
			formatFloat(r.ResidualVar),
			strconv.Itoa(r.N),
			strconv.Itoa(r.Groups),
			strconv.FormatBool(r.Converged),
		}
	}
	return w.WriteSimpleCSV(path,
		[]string{"disease", "slope", "std_err", "ci_low", "ci_high", "intercept_var", "residual_var", "n", "groups", "converged"},
		records)
}
