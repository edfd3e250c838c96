package chart

import (
	"fmt"
	"os"
	"strconv"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/bowutt26/dsci510-fall2025-final-project/internal/dataset"
)

// yearFormatter renders axis years without decimals
func yearFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return strconv.Itoa(int(f + 0.5))
	}
	return ""
}

// renderLineChart writes a multi-series line chart PNG
func (r *Renderer) renderLineChart(name, title, yLabel string, seriesList []chart.Series) error {
	if err := r.ensureDir(); err != nil {
		return err
	}
	if len(seriesList) == 0 {
		return fmt.Errorf("no series to plot for %s", name)
	}

	graph := chart.Chart{
		Title:  title,
		Width:  1100,
		Height: 550,
		XAxis: chart.XAxis{
			Name:           "Year",
			ValueFormatter: yearFormatter,
		},
		YAxis: chart.YAxis{
			Name: yLabel,
		},
		Series: seriesList,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	out := r.path(name)
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	if err := graph.Render(chart.PNG, f); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	r.logger.Info("chart written", "path", out)
	return nil
}

// stateSeries builds one line series per state from (state, year) -> value
func stateSeries(states []string, years []int, value func(state string, year int) (float64, bool)) []chart.Series {
	var list []chart.Series
	for i, state := range states {
		var xs, ys []float64
		for _, year := range years {
			v, ok := value(state, year)
			if !ok {
				continue
			}
			xs = append(xs, float64(year))
			ys = append(ys, v)
		}
		// go-chart cannot render a series with a single point
		if len(xs) < 2 {
			continue
		}
		color := chart.GetDefaultColor(i)
		list = append(list, chart.ContinuousSeries{
			Name:    state,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: color,
				StrokeWidth: 2,
				DotColor:    color,
				DotWidth:    3,
			},
		})
	}
	return list
}

// PM25Trends plots the average PM2.5 concentration per state over time
func (r *Renderer) PM25Trends(merged []dataset.MergedRow) error {
	states := statesOf(merged)
	years := yearsOf(merged)

	pm25 := make(map[string]map[int]float64)
	for _, row := range merged {
		if pm25[row.State] == nil {
			pm25[row.State] = make(map[int]float64)
		}
		pm25[row.State][row.Year] = row.AvgPM25
	}

	series := stateSeries(states, years, func(state string, year int) (float64, bool) {
		v, ok := pm25[state][year]
		return v, ok
	})
	return r.renderLineChart("us_pm25_trends.png",
		"U.S. PM2.5 Concentration Trend by State",
		"Average PM2.5 Concentration (ug/m3)", series)
}

// DiseaseTrends plots the mean prevalence across all diseases per state over time
func (r *Renderer) DiseaseTrends(merged []dataset.MergedRow) error {
	states := statesOf(merged)
	years := yearsOf(merged)

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

	series := stateSeries(states, years, func(state string, year int) (float64, bool) {
		c := counts[state][year]
		if c == 0 {
			return 0, false
		}
		return sums[state][year] / float64(c), true
	})
	return r.renderLineChart("us_disease_trends.png",
		"U.S. Chronic Disease Prevalence Rate Trend by State",
		"Average Disease Prevalence Rate", series)
}

// PerDiseaseTrends plots one trend chart per (disease, unit) combination
func (r *Renderer) PerDiseaseTrends(merged []dataset.MergedRow) error {
	type trendKey struct{ disease, unit string }
	byTrend := make(map[trendKey][]dataset.MergedRow)
	var order []trendKey
	for _, row := range merged {
		k := trendKey{row.Disease, row.Unit}
		if _, seen := byTrend[k]; !seen {
			order = append(order, k)
		}
		byTrend[k] = append(byTrend[k], row)
	}

	for _, k := range order {
		rows := byTrend[k]
		states := statesOf(rows)
		years := yearsOf(rows)

		values := make(map[string]map[int]float64)
		for _, row := range rows {
			if values[row.State] == nil {
				values[row.State] = make(map[int]float64)
			}
			values[row.State][row.Year] = row.AvgPrevalence
		}

		series := stateSeries(states, years, func(state string, year int) (float64, bool) {
			v, ok := values[state][year]
			return v, ok
		})
		if len(series) == 0 {
			r.logger.Warn("skipping trend chart, not enough points",
				"disease", k.disease,
				"unit", k.unit)
			continue
		}

		name := safeFileName("us_trend", k.disease, k.unit) + ".png"
		title := fmt.Sprintf("Trend of %s - %s", k.disease, k.unit)
		if err := r.renderLineChart(name, title, fmt.Sprintf("Average Prevalence Rate (%s)", k.unit), series); err != nil {
			return err
		}
	}
	return nil
}

// GlobalComparison plots the 5-state U.S. average against the worldwide average
func (r *Renderer) GlobalComparison(us []dataset.StatePM25, global []dataset.GlobalMean) error {
	usSum := make(map[int]float64)
	usCount := make(map[int]int)
	for _, row := range us {
		usSum[row.Year] += row.AvgPM25
		usCount[row.Year]++
	}

	var usXs, usYs []float64
	for _, g := range global {
		if usCount[g.Year] > 0 {
			usXs = append(usXs, float64(g.Year))
			usYs = append(usYs, usSum[g.Year]/float64(usCount[g.Year]))
		}
	}
	var globalXs, globalYs []float64
	for _, g := range global {
		globalXs = append(globalXs, float64(g.Year))
		globalYs = append(globalYs, g.AvgPM25)
	}

	var seriesList []chart.Series
	if len(usXs) >= 2 {
		c := chart.GetDefaultColor(0)
		seriesList = append(seriesList, chart.ContinuousSeries{
			Name:    "U.S. (5-State Average)",
			XValues: usXs,
			YValues: usYs,
			Style:   chart.Style{StrokeColor: c, StrokeWidth: 2.5, DotColor: c, DotWidth: 3},
		})
	}
	if len(globalXs) >= 2 {
		c := chart.GetDefaultColor(1)
		seriesList = append(seriesList, chart.ContinuousSeries{
			Name:    "Worldwide Average",
			XValues: globalXs,
			YValues: globalYs,
			Style: chart.Style{
				StrokeColor:     c,
				StrokeWidth:     2.5,
				StrokeDashArray: []float64{5, 5},
				DotColor:        c,
				DotWidth:        3,
			},
		})
	}

	return r.renderLineChart("global_pm25_comparison.png",
		"U.S. vs. Global PM2.5 Concentration Trends",
		"Average PM2.5 Concentration (ug/m3)", seriesList)
}
