package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// WHO CSV columns of interest. The export carries ~30 columns; only these
// four matter for the comparison stage.
const (
	whoColIndicator = "Indicator"
	whoColLocation  = "Location"
	whoColPeriod    = "Period"
	whoColValue     = "FactValueNumeric"
)

// ParseWHOCSV reads the WHO ambient air quality CSV into typed observations.
// Rows with a missing period or numeric value are dropped.
func ParseWHOCSV(r io.Reader) ([]GlobalObservation, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read WHO CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, required := range []string{whoColLocation, whoColPeriod, whoColValue} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("WHO CSV missing required column %q", required)
		}
	}

	var obs []GlobalObservation
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read WHO CSV row: %w", err)
		}

		period, err := strconv.Atoi(field(row, index[whoColPeriod]))
		if err != nil {
			continue
		}
		value, err := strconv.ParseFloat(field(row, index[whoColValue]), 64)
		if err != nil {
			continue
		}

		obs = append(obs, GlobalObservation{
			Location: field(row, index[whoColLocation]),
			Year:     period,
			Value:    value,
		})
	}
	return obs, nil
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
