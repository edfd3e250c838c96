package fetch

import (
	"bytes"
	"context"
	"fmt"
	"regexp"

	"github.com/bowutt26/dsci510-fall2025-final-project/internal/dataset"
)

// driveFileRe extracts the file ID from a Google Drive share link like
// https://drive.google.com/file/d/<id>/view?usp=share_link
var driveFileRe = regexp.MustCompile(`/file/d/([^/]+)`)

// FetchWHO retrieves the WHO global ambient PM2.5 CSV, published behind a
// Google Drive share link, and parses it into observations.
func (c *Client) FetchWHO(ctx context.Context) ([]dataset.GlobalObservation, error) {
	if data, ok := c.cachedBytes(c.paths.WHOCacheFile); ok {
		c.logger.InfoContext(ctx, "using cached WHO CSV",
			"path", c.paths.WHOCacheFile)
		return dataset.ParseWHOCSV(bytes.NewReader(data))
	}

	downloadURL, err := DriveDownloadURL(c.sources.WHOShareURL)
	if err != nil {
		return nil, err
	}

	c.logger.InfoContext(ctx, "downloading WHO global PM2.5 CSV",
		"url", downloadURL)

	body, err := c.get(ctx, downloadURL)
	if err != nil {
		return nil, fmt.Errorf("WHO fetch failed: %w", err)
	}

	obs, err := dataset.ParseWHOCSV(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	if err := c.writeCache(c.paths.WHOCacheFile, body); err != nil {
		return nil, err
	}
	c.logger.InfoContext(ctx, "WHO CSV cached",
		"path", c.paths.WHOCacheFile,
		"rows", len(obs))

	return obs, nil
}

// DriveDownloadURL converts a Drive share link into a direct download URL.
// A URL that is not a share link is assumed to be a direct download already.
func DriveDownloadURL(shareURL string) (string, error) {
	if shareURL == "" {
		return "", fmt.Errorf("empty WHO source URL")
	}
	m := driveFileRe.FindStringSubmatch(shareURL)
	if m == nil {
		return shareURL, nil
	}
	return fmt.Sprintf("https://drive.google.com/uc?export=download&id=%s", m[1]), nil
}
