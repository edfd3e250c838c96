// Package chart renders the companion figures for the analysis stage as PNG
// files in the results directory.
package chart

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bowutt26/dsci510-fall2025-final-project/internal/dataset"
)

// Renderer writes chart PNGs into a single output directory
type Renderer struct {
	dir    string
	logger *slog.Logger
}

// NewRenderer creates a chart renderer rooted at the given directory
func NewRenderer(dir string, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{dir: dir, logger: logger}
}

// path resolves a chart file name inside the output directory
func (r *Renderer) path(name string) string {
	return filepath.Join(r.dir, name)
}

// ensureDir creates the output directory if missing
func (r *Renderer) ensureDir() error {
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return fmt.Errorf("failed to create chart directory: %w", err)
	}
	return nil
}

// safeFileName builds a filesystem-safe chart name from free-text labels
func safeFileName(parts ...string) string {
	joined := strings.Join(parts, "_")
	replacer := strings.NewReplacer(
		" ", "_",
		"/", "_",
		",", "",
		"%", "pct",
	)
	return replacer.Replace(joined)
}

// statesOf returns the sorted distinct states in the merged dataset
func statesOf(rows []dataset.MergedRow) []string {
	seen := make(map[string]bool)
	var states []string
	for _, row := range rows {
		if !seen[row.State] {
			seen[row.State] = true
			states = append(states, row.State)
		}
	}
	sort.Strings(states)
	return states
}

// yearsOf returns the sorted distinct years in the merged dataset
func yearsOf(rows []dataset.MergedRow) []int {
	seen := make(map[int]bool)
	var years []int
	for _, row := range rows {
		if !seen[row.Year] {
			seen[row.Year] = true
			years = append(years, row.Year)
		}
	}
	sort.Ints(years)
	return years
}
