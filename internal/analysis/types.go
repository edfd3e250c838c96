// Package analysis runs the statistical stage: Spearman rank correlation,
// random-intercept mixed-effects regression, and descriptive statistics over
// the merged (state, year, disease) dataset.
package analysis

// Correlation result statuses
const (
	StatusSuccess      = "Success"
	StatusInsufficient = "Insufficient Data"
)

// MinCorrelationPoints is the smallest sample accepted for a correlation.
// Below this the coefficient is meaningless (5 states x 5 years = 25 points possible).
const MinCorrelationPoints = 4

// CorrelationResult holds the Spearman correlation for one disease
type CorrelationResult struct {
	Disease string  `json:"disease"`
	Rho     float64 `json:"rho"`
	PValue  float64 `json:"p_value"`
	N       int     `json:"n"`
	Status  string  `json:"status"`
}

// Significant reports whether the correlation is significant at the 5% level
func (r CorrelationResult) Significant() bool {
	return r.Status == StatusSuccess && r.PValue < 0.05
}

// MixedEffectsResult holds the random-intercept model fit for one disease:
// prevalence ~ PM2.5 with a per-state random intercept.
type MixedEffectsResult struct {
	Disease      string  `json:"disease"`
	Slope        float64 `json:"slope"`
	StdErr       float64 `json:"std_err"`
	CILow        float64 `json:"ci_low"`
	CIHigh       float64 `json:"ci_high"`
	Intercept    float64 `json:"intercept"`
	InterceptVar float64 `json:"intercept_var"`
	ResidualVar  float64 `json:"residual_var"`
	N            int     `json:"n"`
	Groups       int     `json:"groups"`
	Converged    bool    `json:"converged"`
}

// DescriptiveStats summarizes prevalence values for one disease
type DescriptiveStats struct {
	Disease string  `json:"disease"`
	N       int     `json:"n"`
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"std_dev"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}
