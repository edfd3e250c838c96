package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/bowutt26/dsci510-fall2025-final-project/internal/dataset"
)

// MinMixedPoints is the smallest sample accepted for a mixed-effects fit
const MinMixedPoints = 8

// MinMixedGroups is the smallest number of states accepted for a random
// intercept to be identifiable
const MinMixedGroups = 2

// FitMixedEffects fits a random-intercept model y = b0 + b1*x + u_g + e by
// maximum likelihood, profiling the variance ratio psi = var(u)/var(e).
// For a given psi the GLS fit reduces to OLS on within-group mean-centered
// data (y_ij - lambda_g * mean_g(y), with lambda_g = 1 - 1/sqrt(1 + n_g*psi)),
// so the search is one-dimensional.
func FitMixedEffects(x, y []float64, groups []string) (MixedEffectsResult, error) {
	n := len(y)
	if len(x) != n || len(groups) != n {
		return MixedEffectsResult{}, fmt.Errorf("mismatched sample lengths: x=%d y=%d groups=%d", len(x), n, len(groups))
	}
	if n < MinMixedPoints {
		return MixedEffectsResult{}, fmt.Errorf("sample too small for mixed model: %d points", n)
	}

	idx := groupIndex(groups)
	if len(idx.sizes) < MinMixedGroups {
		return MixedEffectsResult{}, fmt.Errorf("need at least %d groups, got %d", MinMixedGroups, len(idx.sizes))
	}

	// Golden-section search over log(psi); the boundary psi=0 (plain OLS)
	// is checked separately.
	const (
		lo      = -12.0
		hi      = 5.0
		golden  = 0.6180339887498949
		iters   = 80
		tinyGap = 1e-7
	)
	a, b := lo, hi
	c := b - golden*(b-a)
	d := a + golden*(b-a)
	fc := profileLogLik(x, y, idx, math.Exp(c))
	fd := profileLogLik(x, y, idx, math.Exp(d))
	for i := 0; i < iters && b-a > tinyGap; i++ {
		if fc > fd {
			b, d, fd = d, c, fc
			c = b - golden*(b-a)
			fc = profileLogLik(x, y, idx, math.Exp(c))
		} else {
			a, c, fc = c, d, fd
			d = a + golden*(b-a)
			fd = profileLogLik(x, y, idx, math.Exp(d))
		}
	}
	psi := math.Exp((a + b) / 2)
	llPsi := profileLogLik(x, y, idx, psi)
	llZero := profileLogLik(x, y, idx, 0)

	converged := true
	if llZero >= llPsi {
		// Random intercept variance collapses to zero
		psi = 0
	} else if (a+b)/2 >= hi-1e-3 {
		converged = false
	}

	fit, err := glsFit(x, y, idx, psi)
	if err != nil {
		return MixedEffectsResult{}, err
	}

	// Wald interval on the slope with n-2 residual degrees of freedom
	dof := float64(n - 2)
	sigma2 := fit.rss / dof
	se := math.Sqrt(sigma2 * fit.xtxInv11)
	tCrit := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: dof}.Quantile(0.975)

	return MixedEffectsResult{
		Slope:        fit.beta1,
		StdErr:       se,
		CILow:        fit.beta1 - tCrit*se,
		CIHigh:       fit.beta1 + tCrit*se,
		Intercept:    fit.beta0,
		InterceptVar: psi * sigma2,
		ResidualVar:  sigma2,
		N:            n,
		Groups:       len(idx.sizes),
		Converged:    converged,
	}, nil
}

// MixedEffectsByDisease fits the random-intercept model for each target
// disease with enough data. Non-convergent or undersized diseases are
// logged and skipped.
func MixedEffectsByDisease(ctx context.Context, merged []dataset.MergedRow, logger *slog.Logger) []MixedEffectsResult {
	if logger == nil {
		logger = slog.Default()
	}

	byDisease := make(map[string][]dataset.MergedRow)
	for _, row := range merged {
		byDisease[row.Disease] = append(byDisease[row.Disease], row)
	}

	var results []MixedEffectsResult
	for _, disease := range dataset.TargetDiseases {
		rows := byDisease[disease]

		var x, y []float64
		var groups []string
		for _, r := range rows {
			if math.IsNaN(r.AvgPM25) || math.IsNaN(r.AvgPrevalence) {
				continue
			}
			x = append(x, r.AvgPM25)
			y = append(y, r.AvgPrevalence)
			groups = append(groups, r.State)
		}

		res, err := FitMixedEffects(x, y, groups)
		if err != nil {
			logger.WarnContext(ctx, "mixed-effects fit skipped",
				"disease", disease,
				"points", len(x),
				"error", err)
			continue
		}
		res.Disease = disease

		logger.InfoContext(ctx, "mixed-effects model fitted",
			"disease", disease,
			"slope", res.Slope,
			"std_err", res.StdErr,
			"groups", res.Groups,
			"converged", res.Converged)
		results = append(results, res)
	}
	return results
}

// grouping holds the group layout of a sample
type grouping struct {
	assign []int // observation -> group ordinal
	sizes  []int
}

func groupIndex(groups []string) grouping {
	ordinal := make(map[string]int)
	g := grouping{assign: make([]int, len(groups))}
	for i, name := range groups {
		o, ok := ordinal[name]
		if !ok {
			o = len(g.sizes)
			ordinal[name] = o
			g.sizes = append(g.sizes, 0)
		}
		g.assign[i] = o
		g.sizes[o]++
	}
	return g
}

type glsResult struct {
	beta0, beta1 float64
	rss          float64
	xtxInv11     float64 // slope entry of (X'X)^-1 on transformed data
}

// glsFit runs the GLS fit for a fixed variance ratio via the centered-OLS
// reduction and returns the coefficient estimates plus what the Wald SE needs.
func glsFit(x, y []float64, idx grouping, psi float64) (glsResult, error) {
	n := len(y)
	lambda := groupShrinkage(idx, psi)

	meanX, meanY := groupMeans(x, y, idx)

	X := mat.NewDense(n, 2, nil)
	ystar := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		g := idx.assign[i]
		X.Set(i, 0, 1-lambda[g])
		X.Set(i, 1, x[i]-lambda[g]*meanX[g])
		ystar.SetVec(i, y[i]-lambda[g]*meanY[g])
	}

	var qr mat.QR
	qr.Factorize(X)
	var beta mat.VecDense
	if err := qr.SolveVecTo(&beta, false, ystar); err != nil {
		return glsResult{}, fmt.Errorf("GLS solve failed: %w", err)
	}

	var fitted mat.VecDense
	fitted.MulVec(X, &beta)
	rss := 0.0
	for i := 0; i < n; i++ {
		r := ystar.AtVec(i) - fitted.AtVec(i)
		rss += r * r
	}

	var xtx, inv mat.Dense
	xtx.Mul(X.T(), X)
	if err := inv.Inverse(&xtx); err != nil {
		return glsResult{}, fmt.Errorf("singular design matrix: %w", err)
	}

	return glsResult{
		beta0:    beta.AtVec(0),
		beta1:    beta.AtVec(1),
		rss:      rss,
		xtxInv11: inv.At(1, 1),
	}, nil
}

// profileLogLik evaluates the profiled log-likelihood at a variance ratio
func profileLogLik(x, y []float64, idx grouping, psi float64) float64 {
	fit, err := glsFit(x, y, idx, psi)
	if err != nil {
		return math.Inf(-1)
	}
	n := float64(len(y))
	sigma2 := fit.rss / n
	if sigma2 <= 0 {
		return math.Inf(-1)
	}

	// log det of each group block (I + psi*J) is log(1 + n_g*psi)
	logDet := 0.0
	for _, size := range idx.sizes {
		logDet += math.Log(1 + float64(size)*psi)
	}
	return -0.5*n*(math.Log(2*math.Pi)+math.Log(sigma2)+1) - 0.5*logDet
}

// groupShrinkage computes the per-group centering factor lambda
func groupShrinkage(idx grouping, psi float64) []float64 {
	lambda := make([]float64, len(idx.sizes))
	for g, size := range idx.sizes {
		lambda[g] = 1 - 1/math.Sqrt(1+float64(size)*psi)
	}
	return lambda
}

func groupMeans(x, y []float64, idx grouping) (meanX, meanY []float64) {
	meanX = make([]float64, len(idx.sizes))
	meanY = make([]float64, len(idx.sizes))
	for i := range x {
		g := idx.assign[i]
		meanX[g] += x[i]
		meanY[g] += y[i]
	}
	for g, size := range idx.sizes {
		meanX[g] /= float64(size)
		meanY[g] /= float64(size)
	}
	return meanX, meanY
}
