package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/bowutt26/dsci510-fall2025-final-project/internal/dataset"
)

// Spearman computes the Spearman rank correlation coefficient and its
// two-sided p-value (t approximation with n-2 degrees of freedom).
func Spearman(x, y []float64) (rho, pValue float64, err error) {
	if len(x) != len(y) {
		return 0, 0, fmt.Errorf("mismatched sample lengths: %d vs %d", len(x), len(y))
	}
	n := len(x)
	if n < MinCorrelationPoints {
		return 0, 0, fmt.Errorf("sample too small for correlation: %d points", n)
	}

	rho = stat.Correlation(Ranks(x), Ranks(y), nil)

	// Degenerate (constant) input yields NaN from the correlation
	if math.IsNaN(rho) {
		return 0, 0, fmt.Errorf("correlation undefined for constant input")
	}

	if math.Abs(rho) >= 1 {
		return rho, 0, nil
	}

	t := rho * math.Sqrt(float64(n-2)/(1-rho*rho))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 2)}
	pValue = 2 * dist.CDF(-math.Abs(t))
	return rho, pValue, nil
}

// Ranks assigns 1-based ranks to values, averaging ties
func Ranks(values []float64) []float64 {
	n := len(values)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && values[idx[j+1]] == values[idx[i]] {
			j++
		}
		// average rank for the tie run [i, j]
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}
	return ranks
}

// CorrelateByDisease computes the PM2.5/prevalence Spearman correlation for
// each target disease. Diseases with too few clean points are reported with
// an insufficient-data status instead of a coefficient.
func CorrelateByDisease(ctx context.Context, merged []dataset.MergedRow, logger *slog.Logger) []CorrelationResult {
	if logger == nil {
		logger = slog.Default()
	}

	byDisease := make(map[string][]dataset.MergedRow)
	for _, row := range merged {
		byDisease[row.Disease] = append(byDisease[row.Disease], row)
	}

	var results []CorrelationResult
	for _, disease := range dataset.TargetDiseases {
		rows := byDisease[disease]

		var x, y []float64
		for _, r := range rows {
			if math.IsNaN(r.AvgPM25) || math.IsNaN(r.AvgPrevalence) {
				continue
			}
			x = append(x, r.AvgPM25)
			y = append(y, r.AvgPrevalence)
		}

		if len(x) < MinCorrelationPoints {
			logger.WarnContext(ctx, "skipping correlation, insufficient data",
				"disease", disease,
				"points", len(x))
			results = append(results, CorrelationResult{
				Disease: disease,
				N:       len(x),
				Status:  StatusInsufficient,
			})
			continue
		}

		rho, p, err := Spearman(x, y)
		if err != nil {
			logger.WarnContext(ctx, "correlation failed",
				"disease", disease,
				"error", err)
			results = append(results, CorrelationResult{
				Disease: disease,
				N:       len(x),
				Status:  StatusInsufficient,
			})
			continue
		}

		logger.InfoContext(ctx, "correlation computed",
			"disease", disease,
			"rho", rho,
			"p_value", p,
			"points", len(x))
		results = append(results, CorrelationResult{
			Disease: disease,
			Rho:     rho,
			PValue:  p,
			N:       len(x),
			Status:  StatusSuccess,
		})
	}
	return results
}
