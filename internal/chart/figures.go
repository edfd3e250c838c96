package chart

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/bowutt26/dsci510-fall2025-final-project/internal/analysis"
	"github.com/bowutt26/dsci510-fall2025-final-project/internal/dataset"
)

var (
	colorSigPositive = color.RGBA{R: 214, G: 39, B: 40, A: 255}  // significant positive
	colorSigNegative = color.RGBA{R: 31, G: 119, B: 180, A: 255} // significant negative
	colorNotSig      = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	colorFit         = color.RGBA{R: 214, G: 39, B: 40, A: 255}

	statePalette = []color.RGBA{
		{R: 31, G: 119, B: 180, A: 255},
		{R: 255, G: 127, B: 14, A: 255},
		{R: 44, G: 160, B: 44, A: 255},
		{R: 214, G: 39, B: 40, A: 255},
		{R: 148, G: 103, B: 189, A: 255},
	}
)

// CorrelationBars renders the correlation summary bar chart. Bars are
// colored by significance (p < 0.05) and direction of the coefficient.
func (r *Renderer) CorrelationBars(results []analysis.CorrelationResult) error {
	if err := r.ensureDir(); err != nil {
		return err
	}

	var names []string
	var succeeded []analysis.CorrelationResult
	for _, res := range results {
		if res.Status != analysis.StatusSuccess {
			continue
		}
		succeeded = append(succeeded, res)
		names = append(names, res.Disease)
	}
	if len(succeeded) == 0 {
		return fmt.Errorf("no successful correlations to plot")
	}

	p := plot.New()
	p.Title.Text = "Correlation between PM2.5 and Chronic Disease Prevalence"
	p.Y.Label.Text = "Spearman Correlation Coefficient"
	p.Y.Min, p.Y.Max = -1, 1
	p.X.Tick.Label.Rotation = math.Pi / 3
	p.X.Tick.Label.XAlign = -1

	// One bar chart per significance class, zeroed elsewhere, so each class
	// gets its own color and legend entry.
	classes := []struct {
		label string
		color color.RGBA
		keep  func(analysis.CorrelationResult) bool
	}{
		{"Significant Positive", colorSigPositive, func(c analysis.CorrelationResult) bool { return c.Significant() && c.Rho > 0 }},
		{"Significant Negative", colorSigNegative, func(c analysis.CorrelationResult) bool { return c.Significant() && c.Rho <= 0 }},
		{"Not Significant (p >= 0.05)", colorNotSig, func(c analysis.CorrelationResult) bool { return !c.Significant() }},
	}

	for _, class := range classes {
		values := make(plotter.Values, len(succeeded))
		used := false
		for i, res := range succeeded {
			if class.keep(res) {
				values[i] = res.Rho
				used = true
			}
		}
		bars, err := plotter.NewBarChart(values, vg.Points(14))
		if err != nil {
			return fmt.Errorf("failed to build bar chart: %w", err)
		}
		bars.Color = class.color
		p.Add(bars)
		if used {
			p.Legend.Add(class.label, bars)
		}
	}

	p.NominalX(names...)
	p.Legend.Top = true

	out := r.path("correlation_summary_bar.png")
	if err := p.Save(11*vg.Inch, 6*vg.Inch, out); err != nil {
		return fmt.Errorf("failed to save correlation bar chart: %w", err)
	}
	r.logger.Info("chart written", "path", out)
	return nil
}

// CorrelationScatters renders one scatter plot per successfully correlated
// disease with a fitted least-squares line and rho/p annotation in the title.
func (r *Renderer) CorrelationScatters(merged []dataset.MergedRow, results []analysis.CorrelationResult) error {
	if err := r.ensureDir(); err != nil {
		return err
	}

	byDisease := make(map[string][]dataset.MergedRow)
	for _, row := range merged {
		byDisease[row.Disease] = append(byDisease[row.Disease], row)
	}

	for _, res := range results {
		if res.Status != analysis.StatusSuccess {
			continue
		}
		rows := byDisease[res.Disease]

		pts := make(plotter.XYs, 0, len(rows))
		var xs, ys []float64
		for _, row := range rows {
			if math.IsNaN(row.AvgPM25) || math.IsNaN(row.AvgPrevalence) {
				continue
			}
			pts = append(pts, plotter.XY{X: row.AvgPM25, Y: row.AvgPrevalence})
			xs = append(xs, row.AvgPM25)
			ys = append(ys, row.AvgPrevalence)
		}
		if len(pts) < 2 {
			continue
		}

		p := plot.New()
		significance := "Not Significant"
		if res.PValue < 0.05 {
			significance = "Significant"
		}
		p.Title.Text = fmt.Sprintf("%s vs. PM2.5\nSpearman rho = %.3f, p = %.3f (%s)",
			res.Disease, res.Rho, res.PValue, significance)
		p.X.Label.Text = "Average PM2.5 Concentration (ug/m3)"
		p.Y.Label.Text = "Age-adjusted Prevalence Rate"

		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("failed to build scatter: %w", err)
		}
		scatter.GlyphStyle.Color = colorSigNegative
		scatter.GlyphStyle.Radius = vg.Points(3)
		p.Add(scatter)

		// Least-squares fit line across the observed PM2.5 range
		alpha, beta := stat.LinearRegression(xs, ys, nil, false)
		minX, maxX := xs[0], xs[0]
		for _, x := range xs {
			minX = math.Min(minX, x)
			maxX = math.Max(maxX, x)
		}
		fit, err := plotter.NewLine(plotter.XYs{
			{X: minX, Y: alpha + beta*minX},
			{X: maxX, Y: alpha + beta*maxX},
		})
		if err != nil {
			return fmt.Errorf("failed to build fit line: %w", err)
		}
		fit.Color = colorFit
		fit.Width = vg.Points(1.5)
		p.Add(fit)

		out := r.path(safeFileName("scatter_pm25_vs", res.Disease) + ".png")
		if err := p.Save(8*vg.Inch, 6*vg.Inch, out); err != nil {
			return fmt.Errorf("failed to save scatter for %s: %w", res.Disease, err)
		}
		r.logger.Info("chart written", "path", out)
	}
	return nil
}

// stateYearGrid adapts the prevalence matrix to the heatmap grid interface
type stateYearGrid struct {
	states []string
	years  []int
	values map[string]map[int]float64
}

func (g stateYearGrid) Dims() (int, int) { return len(g.years), len(g.states) }
func (g stateYearGrid) X(c int) float64  { return float64(g.years[c]) }
func (g stateYearGrid) Y(r int) float64  { return float64(r) }
func (g stateYearGrid) Z(c, r int) float64 {
	if byYear, ok := g.values[g.states[r]]; ok {
		if v, ok := byYear[g.years[c]]; ok {
			return v
		}
	}
	return math.NaN()
}

// Heatmap renders the mean prevalence per state and year
func (r *Renderer) Heatmap(merged []dataset.MergedRow) error {
	if err := r.ensureDir(); err != nil {
		return err
	}

	states := statesOf(merged)
	years := yearsOf(merged)
	if len(states) == 0 || len(years) == 0 {
		return fmt.Errorf("no data for heatmap")
	}

	sums := make(map[string]map[int]float64)
	counts := make(map[string]map[int]int)
	for _, row := range merged {
		if sums[row.State] == nil {
			sums[row.State] = make(map[int]float64)
			counts[row.State] = make(map[int]int)
		}
		sums[row.State][row.Year] += row.AvgPrevalence
		counts[row.State][row.Year]++
	}
	values := make(map[string]map[int]float64)
	for state, byYear := range sums {
		values[state] = make(map[int]float64)
		for year, sum := range byYear {
			values[state][year] = sum / float64(counts[state][year])
		}
	}

	grid := stateYearGrid{states: states, years: years, values: values}
	hm := plotter.NewHeatMap(grid, palette.Heat(12, 1))

	p := plot.New()
	p.Title.Text = "Chronic Disease Prevalence Rate by State and Year"
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "State"
	p.Add(hm)
	p.NominalY(states...)

	out := r.path("disease_heatmap.png")
	if err := p.Save(10*vg.Inch, 7*vg.Inch, out); err != nil {
		return fmt.Errorf("failed to save heatmap: %w", err)
	}
	r.logger.Info("chart written", "path", out)
	return nil
}

// forestPoints combines point estimates with their CI whiskers
type forestPoints struct {
	plotter.XYs
	plotter.XErrors
}

// Forest renders the mixed-effects PM2.5 slopes with 95% CI whiskers,
// one row per disease.
func (r *Renderer) Forest(results []analysis.MixedEffectsResult) error {
	if err := r.ensureDir(); err != nil {
		return err
	}
	if len(results) == 0 {
		return fmt.Errorf("no mixed-effects results to plot")
	}

	pts := forestPoints{
		XYs:     make(plotter.XYs, len(results)),
		XErrors: make(plotter.XErrors, len(results)),
	}
	names := make([]string, len(results))
	for i, res := range results {
		pts.XYs[i] = plotter.XY{X: res.Slope, Y: float64(i)}
		pts.XErrors[i].Low = res.Slope - res.CILow
		pts.XErrors[i].High = res.CIHigh - res.Slope
		names[i] = res.Disease
	}

	p := plot.New()
	p.Title.Text = "Mixed-Effects PM2.5 Slope per Disease (95% CI)"
	p.X.Label.Text = "Prevalence change per ug/m3 PM2.5"

	scatter, err := plotter.NewScatter(pts.XYs)
	if err != nil {
		return fmt.Errorf("failed to build forest points: %w", err)
	}
	scatter.GlyphStyle.Color = colorSigNegative
	scatter.GlyphStyle.Radius = vg.Points(3)

	bars, err := plotter.NewXErrorBars(pts)
	if err != nil {
		return fmt.Errorf("failed to build forest whiskers: %w", err)
	}

	// zero-effect reference line
	zero := plotter.XYs{{X: 0, Y: -0.5}, {X: 0, Y: float64(len(results)) - 0.5}}
	ref, err := plotter.NewLine(zero)
	if err != nil {
		return fmt.Errorf("failed to build reference line: %w", err)
	}
	ref.Color = color.RGBA{A: 255}
	ref.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}

	p.Add(scatter, bars, ref)
	p.NominalY(names...)

	out := r.path("mixed_effects_forest.png")
	if err := p.Save(9*vg.Inch, 7*vg.Inch, out); err != nil {
		return fmt.Errorf("failed to save forest plot: %w", err)
	}
	r.logger.Info("chart written", "path", out)
	return nil
}

// GroupedPrevalenceBars renders the mean prevalence per state grouped by year
func (r *Renderer) GroupedPrevalenceBars(merged []dataset.MergedRow) error {
	if err := r.ensureDir(); err != nil {
		return err
	}

	states := statesOf(merged)
	years := yearsOf(merged)
	if len(states) == 0 || len(years) == 0 {
		return fmt.Errorf("no data for grouped bar chart")
	}

	sums := make(map[string]map[int]float64)
	counts := make(map[string]map[int]int)
	for _, row := range merged {
		if sums[row.State] == nil {
			sums[row.State] = make(map[int]float64)
			counts[row.State] = make(map[int]int)
		}
		sums[row.State][row.Year] += row.AvgPrevalence
		counts[row.State][row.Year]++
	}

	p := plot.New()
	p.Title.Text = "Average Chronic Disease Prevalence by State and Year"
	p.Y.Label.Text = "Average Disease Prevalence Rate"
	p.X.Label.Text = "Year"

	w := vg.Points(12)
	for i, state := range states {
		values := make(plotter.Values, len(years))
		for j, year := range years {
			if c := counts[state][year]; c > 0 {
				values[j] = sums[state][year] / float64(c)
			}
		}
		bars, err := plotter.NewBarChart(values, w)
		if err != nil {
			return fmt.Errorf("failed to build bars for %s: %w", state, err)
		}
		bars.Color = statePalette[i%len(statePalette)]
		bars.Offset = w*vg.Length(i) - w*vg.Length(len(states)-1)/2
		p.Add(bars)
		p.Legend.Add(state, bars)
	}

	yearLabels := make([]string, len(years))
	for i, year := range years {
		yearLabels[i] = fmt.Sprintf("%d", year)
	}
	p.NominalX(yearLabels...)
	p.Legend.Top = true

	out := r.path("grouped_prevalence_bars.png")
	if err := p.Save(11*vg.Inch, 6*vg.Inch, out); err != nil {
		return fmt.Errorf("failed to save grouped bar chart: %w", err)
	}
	r.logger.Info("chart written", "path", out)
	return nil
}
