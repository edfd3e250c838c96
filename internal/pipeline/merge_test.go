package pipeline

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bowutt26/dsci510-fall2025-final-project/internal/dataset"
)

func TestMerge(t *testing.T) {
	pm25 := []dataset.StatePM25{
		{State: "California", Year: 2016, AvgPM25: 12},
		{State: "California", Year: 2017, AvgPM25: 11},
		{State: "Texas", Year: 2016, AvgPM25: 8},
	}
	chronic := []dataset.DiseaseRate{
		{State: "California", Year: 2016, Disease: "Asthma", Unit: "%", AvgPrevalence: 9.5},
		{State: "California", Year: 2016, Disease: "Diabetes", Unit: "%", AvgPrevalence: 10.2},
		{State: "Texas", Year: 2016, Disease: "Asthma", Unit: "%", AvgPrevalence: 8.1},
		{State: "Texas", Year: 2018, Disease: "Asthma", Unit: "%", AvgPrevalence: 8.4}, // no PM2.5 side
	}

	merged, err := Merge(pm25, chronic)
	require.NoError(t, err)

	// Inner join: Texas 2018 (no PM2.5) and California 2017 (no prevalence) drop out
	require.Len(t, merged, 3)

	assert.Equal(t, dataset.MergedRow{
		State: "California", Year: 2016, Disease: "Asthma", Unit: "%",
		AvgPM25: 12, AvgPrevalence: 9.5,
	}, merged[0])
	assert.Equal(t, "Diabetes", merged[1].Disease)
	assert.Equal(t, dataset.MergedRow{
		State: "Texas", Year: 2016, Disease: "Asthma", Unit: "%",
		AvgPM25: 8, AvgPrevalence: 8.1,
	}, merged[2])
}

func TestMerge_KeyUniqueness(t *testing.T) {
	pm25 := []dataset.StatePM25{{State: "California", Year: 2016, AvgPM25: 12}}
	chronic := []dataset.DiseaseRate{
		{State: "California", Year: 2016, Disease: "Asthma", Unit: "%", AvgPrevalence: 9.5},
	}

	merged, err := Merge(pm25, chronic)
	require.NoError(t, err)

	seen := make(map[[4]string]bool)
	for _, row := range merged {
		key := [4]string{row.State, strconv.Itoa(row.Year), row.Disease, row.Unit}
		assert.False(t, seen[key], "duplicate merged key %v", key)
		seen[key] = true
	}
}

func TestMerge_Empty(t *testing.T) {
	_, err := Merge(nil, []dataset.DiseaseRate{{State: "Texas"}})
	assert.Error(t, err)

	_, err = Merge([]dataset.StatePM25{{State: "Texas"}}, nil)
	assert.Error(t, err)
}
