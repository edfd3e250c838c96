package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/bowutt26/dsci510-fall2025-final-project/internal/dataset"
)

// Describe summarizes the prevalence values per target disease
func Describe(merged []dataset.MergedRow) []DescriptiveStats {
	byDisease := make(map[string][]float64)
	for _, row := range merged {
		if math.IsNaN(row.AvgPrevalence) {
			continue
		}
		byDisease[row.Disease] = append(byDisease[row.Disease], row.AvgPrevalence)
	}

	var out []DescriptiveStats
	for _, disease := range dataset.TargetDiseases {
		values := byDisease[disease]
		if len(values) == 0 {
			continue
		}

		stats := DescriptiveStats{
			Disease: disease,
			N:       len(values),
			Mean:    stat.Mean(values, nil),
			Min:     floats.Min(values),
			Max:     floats.Max(values),
		}
		if len(values) > 1 {
			stats.StdDev = stat.StdDev(values, nil)
		}
		out = append(out, stats)
	}
	return out
}
