package dataset

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// SODA rows.json column positions, per the CDC chronic disease indicators
// view metadata (hksd-2xuw).
const (
	cdcColYearStart   = 8
	cdcColYearEnd     = 9
	cdcColState       = 11
	cdcColTopic       = 13
	cdcColUnit        = 16
	cdcColValue       = 18
	cdcColGeolocation = 30
)

// CDCResponse is the envelope of a SODA rows.json export. Each data row is a
// positional array of mixed types.
type CDCResponse struct {
	Data [][]interface{} `json:"data"`
}

// DecodeCDCResponse decodes a raw rows.json payload
func DecodeCDCResponse(data []byte) (*CDCResponse, error) {
	var resp CDCResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode CDC payload: %w", err)
	}
	return &resp, nil
}

// Records converts positional rows into typed records. Rows with missing or
// non-numeric prevalence values are dropped; everything else is kept so the
// processing stage owns the study-frame filtering.
func (r *CDCResponse) Records() []ChronicRecord {
	var records []ChronicRecord
	for _, row := range r.Data {
		if len(row) <= cdcColValue {
			continue
		}

		value, ok := cellFloat(row[cdcColValue])
		if !ok {
			continue
		}
		yearStart, ok := cellInt(row[cdcColYearStart])
		if !ok {
			continue
		}
		yearEnd, ok := cellInt(row[cdcColYearEnd])
		if !ok {
			yearEnd = yearStart
		}

		rec := ChronicRecord{
			YearStart: yearStart,
			YearEnd:   yearEnd,
			State:     cellString(row[cdcColState]),
			Disease:   cellString(row[cdcColTopic]),
			Unit:      cellString(row[cdcColUnit]),
			Value:     value,
		}
		if len(row) > cdcColGeolocation {
			rec.Geolocation = cellString(row[cdcColGeolocation])
		}
		records = append(records, rec)
	}
	return records
}

// cellString reads a SODA cell as a string
func cellString(cell interface{}) string {
	switch v := cell.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// cellFloat reads a SODA cell as a float; SODA serializes numbers as strings
func cellFloat(cell interface{}) (float64, bool) {
	switch v := cell.(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// cellInt reads a SODA cell as an integer
func cellInt(cell interface{}) (int, bool) {
	f, ok := cellFloat(cell)
	if !ok {
		return 0, false
	}
	return int(f), true
}
