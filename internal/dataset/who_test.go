package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleWHOCSV = "\ufeffIndicatorCode,Indicator,Location,Period,Dim1,FactValueNumeric\n" +
	"SDGPM25,Concentrations of fine particulate matter (PM2.5),Albania,2016,Total,18.51\n" +
	"SDGPM25,Concentrations of fine particulate matter (PM2.5),Ghana,2017,Total,34.27\n" +
	"SDGPM25,Concentrations of fine particulate matter (PM2.5),Norway,not-a-year,Total,6.1\n" +
	"SDGPM25,Concentrations of fine particulate matter (PM2.5),Peru,2018,Total,\n"

func TestParseWHOCSV(t *testing.T) {
	obs, err := ParseWHOCSV(strings.NewReader(sampleWHOCSV))
	require.NoError(t, err)

	// Rows with an unparsable period or empty value are dropped
	require.Len(t, obs, 2)
	assert.Equal(t, GlobalObservation{Location: "Albania", Year: 2016, Value: 18.51}, obs[0])
	assert.Equal(t, GlobalObservation{Location: "Ghana", Year: 2017, Value: 34.27}, obs[1])
}

func TestParseWHOCSV_MissingColumn(t *testing.T) {
	_, err := ParseWHOCSV(strings.NewReader("Location,Period\nAlbania,2016\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FactValueNumeric")
}

func TestParseWHOCSV_RaggedRows(t *testing.T) {
	csv := "Indicator,Location,Period,FactValueNumeric\n" +
		"PM2.5,Albania,2016,18.51,extra,columns\n" +
		"PM2.5,Ghana\n"
	obs, err := ParseWHOCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, obs, 1)
	assert.Equal(t, "Albania", obs[0].Location)
}

func TestParseWHOCSV_EmptyInput(t *testing.T) {
	_, err := ParseWHOCSV(strings.NewReader(""))
	assert.Error(t, err)
}
