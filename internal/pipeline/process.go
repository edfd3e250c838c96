// Package pipeline implements the batch stages: cleaning, aggregation to the
// common (state, year, disease) grain, the U.S. merge, and run orchestration.
package pipeline

import (
	"fmt"
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/bowutt26/dsci510-fall2025-final-project/internal/dataset"
)

// CleanPM25 filters monitor observations to the study frame and drops
// non-finite means.
func CleanPM25(obs []dataset.PM25Observation, startYear, endYear int) []dataset.PM25Observation {
	states := dataset.TargetStateSet()
	var clean []dataset.PM25Observation
	for _, o := range obs {
		if o.Year < startYear || o.Year > endYear {
			continue
		}
		if !states[o.StateName] {
			continue
		}
		if math.IsNaN(o.ArithmeticMean) || math.IsInf(o.ArithmeticMean, 0) || o.ArithmeticMean < 0 {
			continue
		}
		clean = append(clean, o)
	}
	return clean
}

// CleanChronic filters CDC records to the study frame. A record qualifies
// when its whole reporting period falls inside the frame.
func CleanChronic(records []dataset.ChronicRecord, startYear, endYear int) []dataset.ChronicRecord {
	states := dataset.TargetStateSet()
	var clean []dataset.ChronicRecord
	for _, r := range records {
		if r.YearStart < startYear || r.YearEnd > endYear {
			continue
		}
		if !states[r.State] {
			continue
		}
		if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) {
			continue
		}
		clean = append(clean, r)
	}
	return clean
}

// CleanGlobal filters WHO observations to the study years
func CleanGlobal(obs []dataset.GlobalObservation, startYear, endYear int) []dataset.GlobalObservation {
	var clean []dataset.GlobalObservation
	for _, o := range obs {
		if o.Year < startYear || o.Year > endYear {
			continue
		}
		if math.IsNaN(o.Value) || math.IsInf(o.Value, 0) {
			continue
		}
		clean = append(clean, o)
	}
	return clean
}

// AggregatePM25 computes the mean of county arithmetic means per (state, year)
func AggregatePM25(obs []dataset.PM25Observation) ([]dataset.StatePM25, error) {
	if len(obs) == 0 {
		return nil, fmt.Errorf("no PM2.5 observations to aggregate")
	}

	states := make([]string, len(obs))
	years := make([]int, len(obs))
	values := make([]float64, len(obs))
	for i, o := range obs {
		states[i] = o.StateName
		years[i] = o.Year
		values[i] = o.ArithmeticMean
	}

	df := dataframe.New(
		series.New(states, series.String, "state"),
		series.New(years, series.Int, "year"),
		series.New(values, series.Float, "value"),
	)

	agg := df.GroupBy("state", "year").
		Aggregation([]dataframe.AggregationType{dataframe.Aggregation_MEAN}, []string{"value"})
	if agg.Err != nil {
		return nil, fmt.Errorf("PM2.5 aggregation failed: %w", agg.Err)
	}

	var out []dataset.StatePM25
	for _, row := range agg.Maps() {
		out = append(out, dataset.StatePM25{
			State:   mapString(row, "state"),
			Year:    mapInt(row, "year"),
			AvgPM25: mapFloat(row, "value_MEAN"),
		})
	}
	sortStatePM25(out)
	return out, nil
}

// AggregateChronic computes the mean prevalence per (state, year, disease, unit).
// The reporting period start year anchors multi-year records.
func AggregateChronic(records []dataset.ChronicRecord) ([]dataset.DiseaseRate, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no chronic disease records to aggregate")
	}

	states := make([]string, len(records))
	years := make([]int, len(records))
	diseases := make([]string, len(records))
	units := make([]string, len(records))
	values := make([]float64, len(records))
	for i, r := range records {
		states[i] = r.State
		years[i] = r.YearStart
		diseases[i] = r.Disease
		units[i] = r.Unit
		values[i] = r.Value
	}

	df := dataframe.New(
		series.New(states, series.String, "state"),
		series.New(years, series.Int, "year"),
		series.New(diseases, series.String, "disease"),
		series.New(units, series.String, "unit"),
		series.New(values, series.Float, "value"),
	)

	agg := df.GroupBy("state", "year", "disease", "unit").
		Aggregation([]dataframe.AggregationType{dataframe.Aggregation_MEAN}, []string{"value"})
	if agg.Err != nil {
		return nil, fmt.Errorf("chronic disease aggregation failed: %w", agg.Err)
	}

	var out []dataset.DiseaseRate
	for _, row := range agg.Maps() {
		out = append(out, dataset.DiseaseRate{
			State:         mapString(row, "state"),
			Year:          mapInt(row, "year"),
			Disease:       mapString(row, "disease"),
			Unit:          mapString(row, "unit"),
			AvgPrevalence: mapFloat(row, "value_MEAN"),
		})
	}
	sortDiseaseRates(out)
	return out, nil
}

// AggregateGlobal computes the worldwide mean PM2.5 per year
func AggregateGlobal(obs []dataset.GlobalObservation) ([]dataset.GlobalMean, error) {
	if len(obs) == 0 {
		return nil, fmt.Errorf("no global observations to aggregate")
	}

	years := make([]int, len(obs))
	values := make([]float64, len(obs))
	for i, o := range obs {
		years[i] = o.Year
		values[i] = o.Value
	}

	df := dataframe.New(
		series.New(years, series.Int, "year"),
		series.New(values, series.Float, "value"),
	)

	agg := df.GroupBy("year").
		Aggregation([]dataframe.AggregationType{dataframe.Aggregation_MEAN}, []string{"value"})
	if agg.Err != nil {
		return nil, fmt.Errorf("global aggregation failed: %w", agg.Err)
	}

	var out []dataset.GlobalMean
	for _, row := range agg.Maps() {
		out = append(out, dataset.GlobalMean{
			Year:    mapInt(row, "year"),
			AvgPM25: mapFloat(row, "value_MEAN"),
		})
	}
	sortGlobalMeans(out)
	return out, nil
}

// mapString reads a string cell out of a dataframe row map
func mapString(row map[string]interface{}, key string) string {
	if v, ok := row[key].(string); ok {
		return v
	}
	return fmt.Sprintf("%v", row[key])
}

// mapInt reads an integer cell; gota may hand back int or float depending on
// how the aggregation rebuilt the column
func mapInt(row map[string]interface{}, key string) int {
	switch v := row[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

// mapFloat reads a float cell
func mapFloat(row map[string]interface{}, key string) float64 {
	switch v := row[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return math.NaN()
	}
}
