package pipeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bowutt26/dsci510-fall2025-final-project/internal/dataset"
)

func TestCleanPM25(t *testing.T) {
	obs := []dataset.PM25Observation{
		{StateName: "California", Year: 2016, ArithmeticMean: 12.0},
		{StateName: "California", Year: 2014, ArithmeticMean: 12.0}, // before frame
		{StateName: "California", Year: 2020, ArithmeticMean: 12.0}, // after frame
		{StateName: "Florida", Year: 2016, ArithmeticMean: 12.0},    // outside study states
		{StateName: "Texas", Year: 2016, ArithmeticMean: math.NaN()},
		{StateName: "Texas", Year: 2016, ArithmeticMean: -1},
		{StateName: "Texas", Year: 2016, ArithmeticMean: 9.5},
	}

	clean := CleanPM25(obs, 2015, 2019)
	require.Len(t, clean, 2)
	assert.Equal(t, "California", clean[0].StateName)
	assert.Equal(t, "Texas", clean[1].StateName)
}

func TestCleanChronic(t *testing.T) {
	records := []dataset.ChronicRecord{
		{YearStart: 2016, YearEnd: 2016, State: "Illinois", Disease: "Asthma", Value: 9},
		{YearStart: 2014, YearEnd: 2016, State: "Illinois", Disease: "Asthma", Value: 9}, // starts early
		{YearStart: 2018, YearEnd: 2020, State: "Illinois", Disease: "Asthma", Value: 9}, // ends late
		{YearStart: 2016, YearEnd: 2016, State: "Ohio", Disease: "Asthma", Value: 9},     // outside study states
	}

	clean := CleanChronic(records, 2015, 2019)
	require.Len(t, clean, 1)
	assert.Equal(t, 2016, clean[0].YearStart)
}

func TestCleanGlobal(t *testing.T) {
	obs := []dataset.GlobalObservation{
		{Location: "Albania", Year: 2016, Value: 18.5},
		{Location: "Albania", Year: 2012, Value: 20.1},
		{Location: "Ghana", Year: 2017, Value: math.Inf(1)},
	}

	clean := CleanGlobal(obs, 2015, 2019)
	require.Len(t, clean, 1)
	assert.Equal(t, 2016, clean[0].Year)
}

func TestAggregatePM25(t *testing.T) {
	obs := []dataset.PM25Observation{
		{StateName: "California", Year: 2016, ArithmeticMean: 10},
		{StateName: "California", Year: 2016, ArithmeticMean: 14},
		{StateName: "California", Year: 2017, ArithmeticMean: 11},
		{StateName: "Texas", Year: 2016, ArithmeticMean: 8},
	}

	agg, err := AggregatePM25(obs)
	require.NoError(t, err)
	require.Len(t, agg, 3)

	// Sorted by state then year
	assert.Equal(t, dataset.StatePM25{State: "California", Year: 2016, AvgPM25: 12}, agg[0])
	assert.Equal(t, dataset.StatePM25{State: "California", Year: 2017, AvgPM25: 11}, agg[1])
	assert.Equal(t, dataset.StatePM25{State: "Texas", Year: 2016, AvgPM25: 8}, agg[2])
}

func TestAggregatePM25_Empty(t *testing.T) {
	_, err := AggregatePM25(nil)
	assert.Error(t, err)
}

func TestAggregateChronic(t *testing.T) {
	records := []dataset.ChronicRecord{
		{State: "California", YearStart: 2016, Disease: "Asthma", Unit: "%", Value: 9},
		{State: "California", YearStart: 2016, Disease: "Asthma", Unit: "%", Value: 11},
		{State: "California", YearStart: 2016, Disease: "Asthma", Unit: "cases per 100,000", Value: 250},
		{State: "Texas", YearStart: 2016, Disease: "Asthma", Unit: "%", Value: 8},
	}

	agg, err := AggregateChronic(records)
	require.NoError(t, err)
	require.Len(t, agg, 3)

	// The unit participates in the grain: same disease, different unit stays separate
	assert.Equal(t, dataset.DiseaseRate{State: "California", Year: 2016, Disease: "Asthma", Unit: "%", AvgPrevalence: 10}, agg[0])
	assert.Equal(t, "cases per 100,000", agg[1].Unit)
	assert.InDelta(t, 250, agg[1].AvgPrevalence, 1e-9)
}

func TestAggregateGlobal(t *testing.T) {
	obs := []dataset.GlobalObservation{
		{Location: "Albania", Year: 2016, Value: 18},
		{Location: "Ghana", Year: 2016, Value: 34},
		{Location: "Albania", Year: 2017, Value: 17},
	}

	agg, err := AggregateGlobal(obs)
	require.NoError(t, err)
	require.Len(t, agg, 2)
	assert.Equal(t, dataset.GlobalMean{Year: 2016, AvgPM25: 26}, agg[0])
	assert.Equal(t, dataset.GlobalMean{Year: 2017, AvgPM25: 17}, agg[1])
}
