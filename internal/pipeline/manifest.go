package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// StageResult records one completed pipeline stage
type StageResult struct {
	Name       string `json:"name"`
	Rows       int    `json:"rows"`
	DurationMS int64  `json:"duration_ms"`
}

// Manifest is the run record written alongside the results
type Manifest struct {
	RunID      string        `json:"run_id"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Stages     []StageResult `json:"stages"`
	Outputs    []string      `json:"outputs"`
}

// AddStage appends a completed stage record
func (m *Manifest) AddStage(name string, rows int, elapsed time.Duration) {
	m.Stages = append(m.Stages, StageResult{
		Name:       name,
		Rows:       rows,
		DurationMS: elapsed.Milliseconds(),
	})
}

// AddOutput records a written result file
func (m *Manifest) AddOutput(path string) {
	m.Outputs = append(m.Outputs, path)
}

// Write persists the manifest as indented JSON
func (m *Manifest) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// ReadManifest loads a previously written run manifest
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return &m, nil
}
