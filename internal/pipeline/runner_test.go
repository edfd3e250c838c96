package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bowutt26/dsci510-fall2025-final-project/internal/analysis"
	"github.com/bowutt26/dsci510-fall2025-final-project/internal/config"
	"github.com/bowutt26/dsci510-fall2025-final-project/internal/dataset"
)

// fakeFetcher serves a synthetic study frame: two states over 2015-2019 with
// PM2.5 rising year over year, asthma tracking PM2.5 and diabetes opposing it.
type fakeFetcher struct {
	pm25Err    error
	chronicErr error
	whoErr     error
}

func (f *fakeFetcher) pm(state string, year int) float64 {
	base := 8.0
	if state == "Texas" {
		base = 11.0
	}
	return base + 0.5*float64(year-2015)
}

func (f *fakeFetcher) FetchPM25(ctx context.Context) (dataset.AQSArchive, error) {
	if f.pm25Err != nil {
		return nil, f.pm25Err
	}
	archive := make(dataset.AQSArchive)
	for year := 2015; year <= 2019; year++ {
		byState := make(map[string]dataset.AQSResponse)
		for _, state := range []string{"California", "Texas"} {
			byState[state] = dataset.AQSResponse{
				Header: []dataset.AQSHeader{{Status: "Success", Rows: 1}},
				Data: []dataset.AQSRow{{
					State:          state,
					Year:           year,
					ArithmeticMean: f.pm(state, year),
				}},
			}
		}
		archive[strconv.Itoa(year)] = byState
	}
	return archive, nil
}

func (f *fakeFetcher) FetchChronic(ctx context.Context) (*dataset.CDCResponse, error) {
	if f.chronicErr != nil {
		return nil, f.chronicErr
	}
	resp := &dataset.CDCResponse{}
	for year := 2015; year <= 2019; year++ {
		for i, state := range []string{"California", "Texas"} {
			pm := f.pm(state, year)
			offset := 0.3 - 0.6*float64(i)
			wiggle := 0.01 * float64(year%3)
			resp.Data = append(resp.Data,
				sodaRow(year, state, "Asthma", 2+0.4*pm+offset+wiggle),
				sodaRow(year, state, "Diabetes", 20-0.3*pm-offset+wiggle),
			)
		}
	}
	return resp, nil
}

func (f *fakeFetcher) FetchWHO(ctx context.Context) ([]dataset.GlobalObservation, error) {
	if f.whoErr != nil {
		return nil, f.whoErr
	}
	var obs []dataset.GlobalObservation
	for year := 2014; year <= 2019; year++ {
		obs = append(obs,
			dataset.GlobalObservation{Location: "Albania", Year: year, Value: 18 + float64(year-2015)},
			dataset.GlobalObservation{Location: "Ghana", Year: year, Value: 34 - float64(year-2015)},
		)
	}
	return obs, nil
}

// sodaRow builds a positional rows.json record with the value serialized as a
// string, the way SODA exports numbers
func sodaRow(year int, state, topic string, value float64) []interface{} {
	row := make([]interface{}, 31)
	row[8] = strconv.Itoa(year)
	row[9] = strconv.Itoa(year)
	row[11] = state
	row[13] = topic
	row[16] = "%"
	row[18] = strconv.FormatFloat(value, 'f', -1, 64)
	row[30] = "POINT (0 0)"
	return row
}

func testRunner(t *testing.T, fetcher Fetcher) (*Runner, *config.Paths) {
	t.Helper()
	cfg := &config.Config{
		Pipeline: config.PipelineConfig{StartYear: 2015, EndYear: 2019},
	}
	paths := config.NewPaths(config.PathsConfig{BaseDir: t.TempDir()})
	r := NewRunner(cfg, paths, fetcher, nil)
	r.SkipCharts = true
	return r, paths
}

func TestRunner_Run(t *testing.T) {
	r, paths := testRunner(t, &fakeFetcher{})

	manifest, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, manifest.RunID)
	assert.False(t, manifest.FinishedAt.Before(manifest.StartedAt))

	var stageNames []string
	for _, s := range manifest.Stages {
		stageNames = append(stageNames, s.Name)
	}
	assert.Equal(t, []string{
		"fetch_pm25", "fetch_chronic", "fetch_who",
		"clean", "aggregate", "merge", "analyze", "export",
	}, stageNames)

	// Every recorded output must exist on disk
	require.Len(t, manifest.Outputs, 9)
	for _, path := range manifest.Outputs {
		assert.FileExists(t, path)
	}

	// The manifest itself must round-trip
	got, err := ReadManifest(paths.RunManifest)
	require.NoError(t, err)
	assert.Equal(t, manifest.RunID, got.RunID)
}

func TestRunner_Run_MergedOutput(t *testing.T) {
	r, paths := testRunner(t, &fakeFetcher{})

	_, err := r.Run(context.Background())
	require.NoError(t, err)

	content, err := os.ReadFile(paths.MergedCSV)
	require.NoError(t, err)

	// Header plus 2 states x 5 years x 2 diseases
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 21)
	assert.Equal(t, "state,year,disease,unit,avg_pm25,avg_prevalence_rate", lines[0])
}

func TestRunner_Run_CorrelationResults(t *testing.T) {
	r, paths := testRunner(t, &fakeFetcher{})

	_, err := r.Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(paths.CorrelationsJSON)
	require.NoError(t, err)

	var results []analysis.CorrelationResult
	require.NoError(t, json.Unmarshal(data, &results))
	require.Len(t, results, len(dataset.TargetDiseases))

	byDisease := make(map[string]analysis.CorrelationResult)
	for _, res := range results {
		byDisease[res.Disease] = res
	}

	asthma := byDisease["Asthma"]
	assert.Equal(t, analysis.StatusSuccess, asthma.Status)
	assert.Equal(t, 10, asthma.N)
	assert.Greater(t, asthma.Rho, 0.9)

	diabetes := byDisease["Diabetes"]
	assert.Equal(t, analysis.StatusSuccess, diabetes.Status)
	assert.Less(t, diabetes.Rho, -0.8)

	// Diseases absent from the fixture are reported, not dropped
	assert.Equal(t, analysis.StatusInsufficient, byDisease["Cancer"].Status)
}

func TestRunner_Run_MixedEffectsResults(t *testing.T) {
	r, paths := testRunner(t, &fakeFetcher{})

	_, err := r.Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(paths.MixedEffectsJSON)
	require.NoError(t, err)

	var results []analysis.MixedEffectsResult
	require.NoError(t, json.Unmarshal(data, &results))
	require.NotEmpty(t, results)

	var asthma *analysis.MixedEffectsResult
	for i := range results {
		if results[i].Disease == "Asthma" {
			asthma = &results[i]
		}
	}
	require.NotNil(t, asthma)
	assert.Equal(t, 10, asthma.N)
	assert.Equal(t, 2, asthma.Groups)
	assert.InDelta(t, 0.4, asthma.Slope, 0.05)
}

func TestRunner_Run_FetchFailureAborts(t *testing.T) {
	tests := []struct {
		name    string
		fetcher *fakeFetcher
		wantMsg string
	}{
		{"pm25", &fakeFetcher{pm25Err: fmt.Errorf("aqs down")}, "PM2.5 retrieval failed"},
		{"chronic", &fakeFetcher{chronicErr: fmt.Errorf("cdc down")}, "chronic disease retrieval failed"},
		{"who", &fakeFetcher{whoErr: fmt.Errorf("drive down")}, "WHO retrieval failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, paths := testRunner(t, tt.fetcher)
			_, err := r.Run(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.NoFileExists(t, paths.RunManifest)
		})
	}
}
