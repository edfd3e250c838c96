package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/bowutt26/dsci510-fall2025-final-project/internal/dataset"
)

// FetchPM25 retrieves AQS annual PM2.5 summaries for every (state, year) cell
// of the study frame. The API caps each request at one calendar year, so the
// frame is fetched cell by cell with bounded concurrency. A failed cell logs
// a warning and contributes no rows; the run continues.
func (c *Client) FetchPM25(ctx context.Context) (dataset.AQSArchive, error) {
	if data, ok := c.cachedBytes(c.paths.PM25CacheFile); ok {
		c.logger.InfoContext(ctx, "using cached AQS payload",
			"path", c.paths.PM25CacheFile)
		return dataset.DecodeAQSArchive(data)
	}

	if c.sources.AQSEmail == "" || c.sources.AQSKey == "" {
		return nil, fmt.Errorf("AQS credentials missing: set EPI_SOURCES_AQS_EMAIL and EPI_SOURCES_AQS_KEY (or .env)")
	}

	archive := make(dataset.AQSArchive)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.pipeline.FetchConcurrency)

	for year := c.pipeline.StartYear; year <= c.pipeline.EndYear; year++ {
		for _, fips := range dataset.StateFIPS {
			year, fips := year, fips
			g.Go(func() error {
				resp, err := c.fetchAQSCell(gctx, year, fips)
				if err != nil {
					c.logger.WarnContext(gctx, "AQS cell fetch failed",
						"state", dataset.StateNameByFIPS[fips],
						"year", year,
						"error", err)
					return nil
				}
				if len(resp.Data) == 0 {
					c.logger.WarnContext(gctx, "no AQS data for cell",
						"state", dataset.StateNameByFIPS[fips],
						"year", year)
					return nil
				}

				mu.Lock()
				yearKey := strconv.Itoa(year)
				if archive[yearKey] == nil {
					archive[yearKey] = make(map[string]dataset.AQSResponse)
				}
				archive[yearKey][dataset.StateNameByFIPS[fips]] = *resp
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("AQS fetch failed: %w", err)
	}
	if len(archive) == 0 {
		return nil, fmt.Errorf("AQS fetch produced no data for %d-%d", c.pipeline.StartYear, c.pipeline.EndYear)
	}

	raw, err := json.MarshalIndent(archive, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode AQS archive: %w", err)
	}
	if err := c.writeCache(c.paths.PM25CacheFile, raw); err != nil {
		return nil, err
	}
	c.logger.InfoContext(ctx, "AQS payload cached",
		"path", c.paths.PM25CacheFile,
		"years", len(archive))

	return archive, nil
}

// fetchAQSCell requests one (state, year) annual summary
func (c *Client) fetchAQSCell(ctx context.Context, year int, stateFIPS string) (*dataset.AQSResponse, error) {
	params := url.Values{}
	params.Set("email", c.sources.AQSEmail)
	params.Set("key", c.sources.AQSKey)
	params.Set("param", dataset.PM25Parameter)
	params.Set("bdate", fmt.Sprintf("%d0101", year))
	params.Set("edate", fmt.Sprintf("%d1231", year))
	params.Set("state", stateFIPS)

	body, err := c.get(ctx, c.sources.AQSBaseURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var resp dataset.AQSResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode AQS response: %w", err)
	}
	for _, h := range resp.Header {
		if h.Status != "" && h.Status != "Success" {
			return nil, fmt.Errorf("AQS request rejected: %s", h.Status)
		}
	}
	return &resp, nil
}
