package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths is the single source of truth for all file paths used by the
// pipeline and the report server.
type Paths struct {
	BaseDir    string
	DataDir    string
	ResultsDir string
	LogsDir    string

	// Cached raw downloads
	PM25CacheFile    string
	ChronicCacheFile string
	WHOCacheFile     string

	// Well-known result files
	PM25AggCSV       string
	ChronicAggCSV    string
	GlobalAggCSV     string
	MergedCSV        string
	CorrelationsCSV  string
	MixedEffectsCSV  string
	CorrelationsJSON string
	MixedEffectsJSON string
	SummaryWorkbook  string
	RunManifest      string
}

// NewPaths builds the path set from configuration. An empty base dir means
// paths resolve against the current working directory.
func NewPaths(cfg PathsConfig) *Paths {
	base := cfg.BaseDir
	if base == "" {
		base = "."
	}

	dataDir := resolveDir(base, cfg.DataDir, "data")
	resultsDir := resolveDir(base, cfg.ResultsDir, "results")
	logsDir := resolveDir(base, cfg.LogsDir, "logs")

	return &Paths{
		BaseDir:    base,
		DataDir:    dataDir,
		ResultsDir: resultsDir,
		LogsDir:    logsDir,

		PM25CacheFile:    filepath.Join(dataDir, "pm25_us.json"),
		ChronicCacheFile: filepath.Join(dataDir, "chronic_us.json"),
		WHOCacheFile:     filepath.Join(dataDir, "who_pm25.csv"),

		PM25AggCSV:       filepath.Join(resultsDir, "pm25_us_aggregated.csv"),
		ChronicAggCSV:    filepath.Join(resultsDir, "chronic_aggregated.csv"),
		GlobalAggCSV:     filepath.Join(resultsDir, "global_pm25_aggregated.csv"),
		MergedCSV:        filepath.Join(resultsDir, "merged_us.csv"),
		CorrelationsCSV:  filepath.Join(resultsDir, "correlations.csv"),
		MixedEffectsCSV:  filepath.Join(resultsDir, "mixed_effects.csv"),
		CorrelationsJSON: filepath.Join(resultsDir, "correlations.json"),
		MixedEffectsJSON: filepath.Join(resultsDir, "mixed_effects.json"),
		SummaryWorkbook:  filepath.Join(resultsDir, "analysis_summary.xlsx"),
		RunManifest:      filepath.Join(resultsDir, "run_manifest.json"),
	}
}

// EnsureDirectories creates all required directories
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.ResultsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetResultPath returns the path of a file inside the results directory
func (p *Paths) GetResultPath(filename string) string {
	return filepath.Join(p.ResultsDir, filename)
}

// GetDataPath returns the path of a file inside the data directory
func (p *Paths) GetDataPath(filename string) string {
	return filepath.Join(p.DataDir, filename)
}

// GetLogPath returns the path of a file inside the logs directory
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

func resolveDir(base, dir, fallback string) string {
	if dir == "" {
		dir = fallback
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(base, dir)
}
