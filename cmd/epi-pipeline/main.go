package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bowutt26/dsci510-fall2025-final-project/internal/analysis"
	"github.com/bowutt26/dsci510-fall2025-final-project/internal/config"
	"github.com/bowutt26/dsci510-fall2025-final-project/internal/fetch"
	"github.com/bowutt26/dsci510-fall2025-final-project/internal/infrastructure"
	"github.com/bowutt26/dsci510-fall2025-final-project/internal/pipeline"
)

func main() {
	dataDir := flag.String("data", "", "directory for cached downloads (defaults to ./data)")
	resultsDir := flag.String("results", "", "directory for result files (defaults to ./results)")
	startYear := flag.Int("start", 0, "first study year (default from config)")
	endYear := flag.Int("end", 0, "last study year (default from config)")
	noCache := flag.Bool("no-cache", false, "ignore cached downloads and re-fetch everything")
	skipCharts := flag.Bool("skip-charts", false, "skip figure rendering")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.Paths.DataDir = *dataDir
	}
	if *resultsDir != "" {
		cfg.Paths.ResultsDir = *resultsDir
	}
	if *startYear != 0 {
		cfg.Pipeline.StartYear = *startYear
	}
	if *endYear != 0 {
		cfg.Pipeline.EndYear = *endYear
	}
	if *noCache {
		cfg.Pipeline.UseCache = false
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	paths := config.NewPaths(cfg.Paths)
	if err := paths.EnsureDirectories(); err != nil {
		logger.Error("failed to create required directories", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetcher := fetch.NewClient(cfg, paths, logger)
	runner := pipeline.NewRunner(cfg, paths, fetcher, logger)
	runner.SkipCharts = *skipCharts

	manifest, err := runner.Run(ctx)
	if err != nil {
		logger.Error("pipeline run failed", "error", err)
		os.Exit(1)
	}

	printSummary(paths.CorrelationsJSON, manifest)
}

// printSummary echoes the headline correlation numbers to stdout so a run is
// readable without opening the result files.
func printSummary(correlationsPath string, manifest *pipeline.Manifest) {
	fmt.Printf("Run %s finished in %s\n",
		manifest.RunID,
		manifest.FinishedAt.Sub(manifest.StartedAt).Round(1e6))

	data, err := os.ReadFile(correlationsPath)
	if err != nil {
		return
	}
	var results []analysis.CorrelationResult
	if err := json.Unmarshal(data, &results); err != nil {
		return
	}

	fmt.Println("Correlation summary (PM2.5 vs prevalence):")
	for _, res := range results {
		if res.Status != analysis.StatusSuccess {
			fmt.Printf("  %-50s %s\n", res.Disease, res.Status)
			continue
		}
		fmt.Printf("  %-50s rho=%7.4f  p=%.4f  n=%d\n", res.Disease, res.Rho, res.PValue, res.N)
	}

	fmt.Printf("Wrote %d result files to %s\n", len(manifest.Outputs), "results directory")
}
