package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleAQSArchive = `{
  "2015": {
    "California": {
      "Header": [{"status": "Success", "rows": 2}],
      "Data": [
        {"state_code": "06", "state": "California", "county": "Fresno", "parameter": "PM2.5 - Local Conditions", "year": 2015, "arithmetic_mean": 12.4, "units_of_measure": "Micrograms/cubic meter (LC)"},
        {"state_code": "06", "state": "California", "county": "Kern", "parameter": "PM2.5 - Local Conditions", "year": 2015, "arithmetic_mean": 14.1, "units_of_measure": "Micrograms/cubic meter (LC)"}
      ]
    },
    "Colorado": {
      "Header": [{"status": "Success", "rows": 0}],
      "Data": []
    }
  },
  "2016": {
    "Texas": {
      "Header": [{"status": "Success", "rows": 1}],
      "Data": [
        {"state_code": "48", "state": "Texas", "county": "Harris", "year": 0, "arithmetic_mean": 9.8}
      ]
    }
  }
}`

func TestDecodeAQSArchive(t *testing.T) {
	archive, err := DecodeAQSArchive([]byte(sampleAQSArchive))
	require.NoError(t, err)

	require.Contains(t, archive, "2015")
	require.Contains(t, archive["2015"], "California")
	assert.Len(t, archive["2015"]["California"].Data, 2)
	assert.Equal(t, "Success", archive["2015"]["California"].Header[0].Status)
}

func TestDecodeAQSArchive_Invalid(t *testing.T) {
	_, err := DecodeAQSArchive([]byte(`{"2015": "not an object"}`))
	assert.Error(t, err)
}

func TestAQSArchive_Observations(t *testing.T) {
	archive, err := DecodeAQSArchive([]byte(sampleAQSArchive))
	require.NoError(t, err)

	obs := archive.Observations()
	require.Len(t, obs, 3)

	byState := make(map[string][]PM25Observation)
	for _, o := range obs {
		byState[o.StateName] = append(byState[o.StateName], o)
	}

	require.Len(t, byState["California"], 2)
	assert.Equal(t, 2015, byState["California"][0].Year)
	assert.Equal(t, "06", byState["California"][0].StateCode)

	// Year missing on the row falls back to the archive key
	require.Len(t, byState["Texas"], 1)
	assert.Equal(t, 2016, byState["Texas"][0].Year)
	assert.InDelta(t, 9.8, byState["Texas"][0].ArithmeticMean, 1e-9)
}

func TestAQSArchive_Observations_SkipsBadYearKey(t *testing.T) {
	archive := AQSArchive{
		"not-a-year": {
			"California": {Data: []AQSRow{{State: "California", ArithmeticMean: 10}}},
		},
	}
	assert.Empty(t, archive.Observations())
}
