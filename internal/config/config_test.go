package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://aqs.epa.gov/data/api/annualData/byState", cfg.Sources.AQSBaseURL)
	assert.Contains(t, cfg.Sources.ChronicURL, "data.cdc.gov")
	assert.Equal(t, 2015, cfg.Pipeline.StartYear)
	assert.Equal(t, 2019, cfg.Pipeline.EndYear)
	assert.Equal(t, 4, cfg.Pipeline.FetchConcurrency)
	assert.Equal(t, 2*time.Minute, cfg.Pipeline.FetchTimeout)
	assert.True(t, cfg.Pipeline.UseCache)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("EPI_SOURCES_AQS_EMAIL", "someone@example.com")
	t.Setenv("EPI_SOURCES_AQS_KEY", "secretkey")
	t.Setenv("EPI_PIPELINE_START_YEAR", "2016")
	t.Setenv("EPI_PIPELINE_END_YEAR", "2018")
	t.Setenv("EPI_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "someone@example.com", cfg.Sources.AQSEmail)
	assert.Equal(t, "secretkey", cfg.Sources.AQSKey)
	assert.Equal(t, 2016, cfg.Pipeline.StartYear)
	assert.Equal(t, 2018, cfg.Pipeline.EndYear)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_ValidationFailure(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "bad log level", key: "EPI_LOGGING_LEVEL", value: "verbose"},
		{name: "end year before start year", key: "EPI_PIPELINE_END_YEAR", value: "2010"},
		{name: "zero concurrency", key: "EPI_PIPELINE_FETCH_CONCURRENCY", value: "0"},
		{name: "bad aqs url", key: "EPI_SOURCES_AQS_BASE_URL", value: "not-a-url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "validation failed")
		})
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	yaml := `
sources:
  aqs_email: file@example.com
  aqs_key: filekey
pipeline:
  start_year: 2017
  end_year: 2019
`
	require.NoError(t, os.WriteFile(file, []byte(yaml), 0644))
	t.Setenv("EPI_CONFIG_FILE", file)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "file@example.com", cfg.Sources.AQSEmail)
	assert.Equal(t, 2017, cfg.Pipeline.StartYear)
}

func TestLoad_EnvBeatsConfigFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("sources:\n  aqs_email: file@example.com\n"), 0644))
	t.Setenv("EPI_CONFIG_FILE", file)
	t.Setenv("EPI_SOURCES_AQS_EMAIL", "env@example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "env@example.com", cfg.Sources.AQSEmail)
}

func TestNewPaths(t *testing.T) {
	p := NewPaths(PathsConfig{BaseDir: "/tmp/epi"})

	assert.Equal(t, filepath.Join("/tmp/epi", "data"), p.DataDir)
	assert.Equal(t, filepath.Join("/tmp/epi", "results"), p.ResultsDir)
	assert.Equal(t, filepath.Join("/tmp/epi", "logs"), p.LogsDir)
	assert.Equal(t, filepath.Join("/tmp/epi", "data", "pm25_us.json"), p.PM25CacheFile)
	assert.Equal(t, filepath.Join("/tmp/epi", "results", "merged_us.csv"), p.MergedCSV)
	assert.Equal(t, filepath.Join("/tmp/epi", "results", "analysis_summary.xlsx"), p.SummaryWorkbook)
}

func TestNewPaths_AbsoluteDirsWin(t *testing.T) {
	p := NewPaths(PathsConfig{BaseDir: "/tmp/epi", ResultsDir: "/var/results"})

	assert.Equal(t, "/var/results", p.ResultsDir)
	assert.Equal(t, filepath.Join("/tmp/epi", "data"), p.DataDir)
}

func TestNewPaths_EmptyBaseDir(t *testing.T) {
	p := NewPaths(PathsConfig{})

	assert.Equal(t, ".", p.BaseDir)
	assert.Equal(t, filepath.Join(".", "data"), p.DataDir)
}

func TestPaths_EnsureDirectories(t *testing.T) {
	p := NewPaths(PathsConfig{BaseDir: t.TempDir()})
	require.NoError(t, p.EnsureDirectories())

	for _, dir := range []string{p.DataDir, p.ResultsDir, p.LogsDir} {
		assert.DirExists(t, dir)
	}
}

func TestPaths_GetResultPath(t *testing.T) {
	p := NewPaths(PathsConfig{BaseDir: "/tmp/epi"})
	assert.Equal(t, filepath.Join("/tmp/epi", "results", "chart.png"), p.GetResultPath("chart.png"))
	assert.Equal(t, filepath.Join("/tmp/epi", "data", "raw.json"), p.GetDataPath("raw.json"))
}
