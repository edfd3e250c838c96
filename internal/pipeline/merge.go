package pipeline

import (
	"fmt"
	"sort"

	"github.com/go-gota/gota/dataframe"

	"github.com/bowutt26/dsci510-fall2025-final-project/internal/dataset"
)

// Merge inner-joins the two U.S. aggregates on (state, year). Rows without
// both a PM2.5 average and a prevalence average are dropped. The result is
// unique per (state, year, disease, unit).
func Merge(pm25 []dataset.StatePM25, chronic []dataset.DiseaseRate) ([]dataset.MergedRow, error) {
	if len(pm25) == 0 || len(chronic) == 0 {
		return nil, fmt.Errorf("cannot merge empty aggregates: pm25=%d chronic=%d", len(pm25), len(chronic))
	}

	left := dataframe.LoadStructs(pm25)
	if left.Err != nil {
		return nil, fmt.Errorf("failed to build PM2.5 dataframe: %w", left.Err)
	}
	right := dataframe.LoadStructs(chronic)
	if right.Err != nil {
		return nil, fmt.Errorf("failed to build chronic dataframe: %w", right.Err)
	}

	joined := left.InnerJoin(right, "state", "year")
	if joined.Err != nil {
		return nil, fmt.Errorf("merge failed: %w", joined.Err)
	}

	var out []dataset.MergedRow
	for _, row := range joined.Maps() {
		out = append(out, dataset.MergedRow{
			State:         mapString(row, "state"),
			Year:          mapInt(row, "year"),
			Disease:       mapString(row, "disease"),
			Unit:          mapString(row, "unit"),
			AvgPM25:       mapFloat(row, "avg_pm25"),
			AvgPrevalence: mapFloat(row, "avg_prevalence_rate"),
		})
	}
	sortMergedRows(out)
	return out, nil
}

func sortStatePM25(rows []dataset.StatePM25) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].State != rows[j].State {
			return rows[i].State < rows[j].State
		}
		return rows[i].Year < rows[j].Year
	})
}

func sortDiseaseRates(rows []dataset.DiseaseRate) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].State != rows[j].State {
			return rows[i].State < rows[j].State
		}
		if rows[i].Year != rows[j].Year {
			return rows[i].Year < rows[j].Year
		}
		if rows[i].Disease != rows[j].Disease {
			return rows[i].Disease < rows[j].Disease
		}
		return rows[i].Unit < rows[j].Unit
	})
}

func sortGlobalMeans(rows []dataset.GlobalMean) {
	sort.Slice(rows, func(i, j int) bool { return rows[i].Year < rows[j].Year })
}

func sortMergedRows(rows []dataset.MergedRow) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].State != rows[j].State {
			return rows[i].State < rows[j].State
		}
		if rows[i].Year != rows[j].Year {
			return rows[i].Year < rows[j].Year
		}
		if rows[i].Disease != rows[j].Disease {
			return rows[i].Disease < rows[j].Disease
		}
		return rows[i].Unit < rows[j].Unit
	})
}
