package fetch

import (
	"context"
	"fmt"

	"github.com/bowutt26/dsci510-fall2025-final-project/internal/dataset"
)

// FetchChronic retrieves the CDC chronic disease indicators rows.json export.
// The export is a single large payload; it is cached verbatim.
func (c *Client) FetchChronic(ctx context.Context) (*dataset.CDCResponse, error) {
	if data, ok := c.cachedBytes(c.paths.ChronicCacheFile); ok {
		c.logger.InfoContext(ctx, "using cached CDC payload",
			"path", c.paths.ChronicCacheFile)
		return dataset.DecodeCDCResponse(data)
	}

	c.logger.InfoContext(ctx, "downloading CDC chronic disease indicators",
		"url", c.sources.ChronicURL)

	body, err := c.get(ctx, c.sources.ChronicURL)
	if err != nil {
		return nil, fmt.Errorf("CDC fetch failed: %w", err)
	}

	resp, err := dataset.DecodeCDCResponse(body)
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("CDC payload contains no rows")
	}

	if err := c.writeCache(c.paths.ChronicCacheFile, body); err != nil {
		return nil, err
	}
	c.logger.InfoContext(ctx, "CDC payload cached",
		"path", c.paths.ChronicCacheFile,
		"rows", len(resp.Data))

	return resp, nil
}
