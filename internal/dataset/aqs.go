package dataset

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// AQSResponse is the envelope returned by the AQS annualData/byState endpoint
type AQSResponse struct {
	Header []AQSHeader `json:"Header"`
	Data   []AQSRow    `json:"Data"`
}

// AQSHeader carries the request status reported by the API
type AQSHeader struct {
	Status  string `json:"status"`
	Request string `json:"url"`
	Rows    int    `json:"rows"`
}

// AQSRow is one annual summary row for a single monitor
type AQSRow struct {
	StateCode      string  `json:"state_code"`
	State          string  `json:"state"`
	County         string  `json:"county"`
	Parameter      string  `json:"parameter"`
	ParameterCode  string  `json:"parameter_code"`
	Year           int     `json:"year"`
	ArithmeticMean float64 `json:"arithmetic_mean"`
	Units          string  `json:"units_of_measure"`
}

// AQSArchive is the cached shape of all AQS responses for a run:
// year -> state name -> response. Matches the on-disk pm25_us.json layout.
type AQSArchive map[string]map[string]AQSResponse

// DecodeAQSArchive decodes the cached AQS payload
func DecodeAQSArchive(data []byte) (AQSArchive, error) {
	var archive AQSArchive
	if err := json.Unmarshal(data, &archive); err != nil {
		return nil, fmt.Errorf("failed to decode AQS archive: %w", err)
	}
	return archive, nil
}

// Observations flattens the archive into monitor-level observations.
// Responses without a Data section contribute nothing.
func (a AQSArchive) Observations() []PM25Observation {
	var obs []PM25Observation
	for yearKey, byState := range a {
		year, err := strconv.Atoi(yearKey)
		if err != nil {
			continue
		}
		for stateName, resp := range byState {
			for _, row := range resp.Data {
				rowYear := row.Year
				if rowYear == 0 {
					rowYear = year
				}
				name := row.State
				if name == "" {
					name = stateName
				}
				obs = append(obs, PM25Observation{
					StateCode:      row.StateCode,
					StateName:      name,
					Year:           rowYear,
					ArithmeticMean: row.ArithmeticMean,
				})
			}
		}
	}
	return obs
}
