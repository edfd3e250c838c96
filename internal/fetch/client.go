// Package fetch retrieves the three upstream datasets and caches the raw
// payloads in the data directory so repeat runs work offline.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/time/rate"

	"github.com/bowutt26/dsci510-fall2025-final-project/internal/config"
)

// Client downloads the upstream datasets
type Client struct {
	httpClient *http.Client
	sources    config.SourcesConfig
	pipeline   config.PipelineConfig
	paths      *config.Paths
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a fetch client. The rate limiter protects the AQS API,
// which throttles aggressive clients.
func NewClient(cfg *config.Config, paths *config.Paths, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Pipeline.FetchTimeout},
		sources:    cfg.Sources,
		pipeline:   cfg.Pipeline,
		paths:      paths,
		limiter:    rate.NewLimiter(rate.Limit(cfg.Pipeline.RequestsPerSec), 1),
		logger:     logger,
	}
}

// get performs a rate-limited GET and returns the response body
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

// cachedBytes returns the cached file contents when caching is enabled and
// the file exists. The second return reports a cache hit.
func (c *Client) cachedBytes(path string) ([]byte, bool) {
	if !c.pipeline.UseCache {
		return nil, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	return data, true
}

// writeCache persists a raw payload to the data directory
func (c *Client) writeCache(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file %s: %w", path, err)
	}
	return nil
}
