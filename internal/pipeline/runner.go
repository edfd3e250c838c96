package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bowutt26/dsci510-fall2025-final-project/internal/analysis"
	"github.com/bowutt26/dsci510-fall2025-final-project/internal/chart"
	"github.com/bowutt26/dsci510-fall2025-final-project/internal/config"
	"github.com/bowutt26/dsci510-fall2025-final-project/internal/dataset"
	"github.com/bowutt26/dsci510-fall2025-final-project/internal/exporter"
	"github.com/bowutt26/dsci510-fall2025-final-project/internal/infrastructure"
)

// Fetcher retrieves the three upstream datasets
type Fetcher interface {
	FetchPM25(ctx context.Context) (dataset.AQSArchive, error)
	FetchChronic(ctx context.Context) (*dataset.CDCResponse, error)
	FetchWHO(ctx context.Context) ([]dataset.GlobalObservation, error)
}

// Runner executes the full batch: fetch, clean, aggregate, merge, analyze,
// visualize, export. Stages run linearly; each failure aborts the run with
// a wrapped error.
type Runner struct {
	cfg     *config.Config
	paths   *config.Paths
	fetcher Fetcher
	csv     *exporter.CSVWriter
	charts  *chart.Renderer
	logger  *slog.Logger

	// SkipCharts disables figure rendering (used by headless runs)
	SkipCharts bool
}

// NewRunner wires a pipeline runner from its parts
func NewRunner(cfg *config.Config, paths *config.Paths, fetcher Fetcher, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		cfg:     cfg,
		paths:   paths,
		fetcher: fetcher,
		csv:     exporter.NewCSVWriter(logger),
		charts:  chart.NewRenderer(paths.ResultsDir, logger),
		logger:  logger,
	}
}

// Run executes all pipeline stages and writes the run manifest
func (r *Runner) Run(ctx context.Context) (*Manifest, error) {
	manifest := &Manifest{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	ctx = infrastructure.WithRunID(ctx, manifest.RunID)

	r.logger.InfoContext(ctx, "pipeline run starting",
		"start_year", r.cfg.Pipeline.StartYear,
		"end_year", r.cfg.Pipeline.EndYear)

	if err := r.paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to prepare directories: %w", err)
	}

	// --- Retrieval ---
	stageStart := time.Now()
	archive, err := r.fetcher.FetchPM25(ctx)
	if err != nil {
		return nil, fmt.Errorf("PM2.5 retrieval failed: %w", err)
	}
	observations := archive.Observations()
	manifest.AddStage("fetch_pm25", len(observations), time.Since(stageStart))

	stageStart = time.Now()
	cdcResp, err := r.fetcher.FetchChronic(ctx)
	if err != nil {
		return nil, fmt.Errorf("chronic disease retrieval failed: %w", err)
	}
	chronicRecords := cdcResp.Records()
	manifest.AddStage("fetch_chronic", len(chronicRecords), time.Since(stageStart))

	stageStart = time.Now()
	globalObs, err := r.fetcher.FetchWHO(ctx)
	if err != nil {
		return nil, fmt.Errorf("WHO retrieval failed: %w", err)
	}
	manifest.AddStage("fetch_who", len(globalObs), time.Since(stageStart))

	// --- Cleaning ---
	stageStart = time.Now()
	start, end := r.cfg.Pipeline.StartYear, r.cfg.Pipeline.EndYear
	cleanPM25 := CleanPM25(observations, start, end)
	cleanChronic := CleanChronic(chronicRecords, start, end)
	cleanGlobal := CleanGlobal(globalObs, start, end)
	r.logger.InfoContext(ctx, "cleaning complete",
		"pm25_rows", len(cleanPM25),
		"chronic_rows", len(cleanChronic),
		"global_rows", len(cleanGlobal))
	manifest.AddStage("clean", len(cleanPM25)+len(cleanChronic)+len(cleanGlobal), time.Since(stageStart))

	// --- Aggregation ---
	stageStart = time.Now()
	pm25Agg, err := AggregatePM25(cleanPM25)
	if err != nil {
		return nil, fmt.Errorf("PM2.5 aggregation failed: %w", err)
	}
	chronicAgg, err := AggregateChronic(cleanChronic)
	if err != nil {
		return nil, fmt.Errorf("chronic aggregation failed: %w", err)
	}
	globalAgg, err := AggregateGlobal(cleanGlobal)
	if err != nil {
		return nil, fmt.Errorf("global aggregation failed: %w", err)
	}
	manifest.AddStage("aggregate", len(pm25Agg)+len(chronicAgg)+len(globalAgg), time.Since(stageStart))

	// --- Merge ---
	stageStart = time.Now()
	merged, err := Merge(pm25Agg, chronicAgg)
	if err != nil {
		return nil, fmt.Errorf("merge failed: %w", err)
	}
	r.logger.InfoContext(ctx, "merge complete", "rows", len(merged))
	manifest.AddStage("merge", len(merged), time.Since(stageStart))

	// --- Analysis ---
	stageStart = time.Now()
	correlations := analysis.CorrelateByDisease(ctx, merged, r.logger)
	mixedEffects := analysis.MixedEffectsByDisease(ctx, merged, r.logger)
	descriptive := analysis.Describe(merged)
	manifest.AddStage("analyze", len(correlations)+len(mixedEffects), time.Since(stageStart))

	// --- Visualization ---
	if !r.SkipCharts {
		stageStart = time.Now()
		if err := r.renderCharts(ctx, merged, pm25Agg, globalAgg, correlations, mixedEffects); err != nil {
			return nil, fmt.Errorf("chart rendering failed: %w", err)
		}
		manifest.AddStage("visualize", 0, time.Since(stageStart))
	}

	// --- Export ---
	stageStart = time.Now()
	if err := r.export(manifest, merged, pm25Agg, chronicAgg, globalAgg, correlations, mixedEffects, descriptive); err != nil {
		return nil, err
	}
	manifest.AddStage("export", len(manifest.Outputs), time.Since(stageStart))

	manifest.FinishedAt = time.Now().UTC()
	if err := manifest.Write(r.paths.RunManifest); err != nil {
		return nil, err
	}
	r.logger.InfoContext(ctx, "pipeline run finished",
		"elapsed", manifest.FinishedAt.Sub(manifest.StartedAt).String(),
		"outputs", len(manifest.Outputs))
	return manifest, nil
}

func (r *Runner) renderCharts(
	ctx context.Context,
	merged []dataset.MergedRow,
	pm25Agg []dataset.StatePM25,
	globalAgg []dataset.GlobalMean,
	correlations []analysis.CorrelationResult,
	mixedEffects []analysis.MixedEffectsResult,
) error {
	if err := r.charts.PM25Trends(merged); err != nil {
		return err
	}
	if err := r.charts.DiseaseTrends(merged); err != nil {
		return err
	}
	if err := r.charts.PerDiseaseTrends(merged); err != nil {
		return err
	}
	if err := r.charts.GlobalComparison(pm25Agg, globalAgg); err != nil {
		return err
	}
	if err := r.charts.Heatmap(merged); err != nil {
		return err
	}
	if err := r.charts.GroupedPrevalenceBars(merged); err != nil {
		return err
	}
	if err := r.charts.CorrelationBars(correlations); err != nil {
		r.logger.WarnContext(ctx, "correlation bar chart skipped", "error", err)
	}
	if err := r.charts.CorrelationScatters(merged, correlations); err != nil {
		return err
	}
	if err := r.charts.Forest(mixedEffects); err != nil {
		r.logger.WarnContext(ctx, "forest plot skipped", "error", err)
	}
	return nil
}

func (r *Runner) export(
	manifest *Manifest,
	merged []dataset.MergedRow,
	pm25Agg []dataset.StatePM25,
	chronicAgg []dataset.DiseaseRate,
	globalAgg []dataset.GlobalMean,
	correlations []analysis.CorrelationResult,
	mixedEffects []analysis.MixedEffectsResult,
	descriptive []analysis.DescriptiveStats,
) error {
	writes := []struct {
		path string
		fn   func(string) error
	}{
		{r.paths.PM25AggCSV, func(p string) error { return r.csv.WritePM25Aggregate(p, pm25Agg) }},
		{r.paths.ChronicAggCSV, func(p string) error { return r.csv.WriteChronicAggregate(p, chronicAgg) }},
		{r.paths.GlobalAggCSV, func(p string) error { return r.csv.WriteGlobalAggregate(p, globalAgg) }},
		{r.paths.MergedCSV, func(p string) error { return r.csv.WriteMerged(p, merged) }},
		{r.paths.CorrelationsCSV, func(p string) error { return r.csv.WriteCorrelations(p, correlations) }},
		{r.paths.MixedEffectsCSV, func(p string) error { return r.csv.WriteMixedEffects(p, mixedEffects) }},
		{r.paths.CorrelationsJSON, func(p string) error { return r.csv.WriteJSON(p, correlations) }},
		{r.paths.MixedEffectsJSON, func(p string) error { return r.csv.WriteJSON(p, mixedEffects) }},
	}
	for _, wr := range writes {
		if err := wr.fn(wr.path); err != nil {
			return err
		}
		manifest.AddOutput(wr.path)
	}

	if err := exporter.WriteSummaryWorkbook(r.paths.SummaryWorkbook, exporter.WorkbookData{
		Merged:       merged,
		Correlations: correlations,
		MixedEffects: mixedEffects,
		Descriptive:  descriptive,
	}, r.logger); err != nil {
		return err
	}
	manifest.AddOutput(r.paths.SummaryWorkbook)
	return nil
}
