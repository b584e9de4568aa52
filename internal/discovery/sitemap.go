package discovery

import (
	"bytes"
	"context"
	"fmt"

	sitemap "github.com/oxffaa/gopher-parse-sitemap"
	"go.uber.org/zap"
)

// sitemapLocations are tried in order against the base host.
var sitemapLocations = []string{"/sitemap.xml", "/sitemap_index.xml"}

// fetchSitemapURLs fetches the site's sitemap (or sitemap index, one level of
// nesting) and returns every listed URL. A missing sitemap is not an error;
// the caller just gets an empty slice.
func (e *Engine) fetchSitemapURLs(ctx context.Context, baseURL string) []string {
	for _, loc := range sitemapLocations {
		urls, err := e.parseSitemapAt(ctx, baseURL+loc, true)
		if err != nil {
			e.logger.Debug("no sitemap", zap.String("url", baseURL+loc), zap.Error(err))
			continue
		}
		if len(urls) > 0 {
			e.logger.Info("sitemap found", zap.String("url", baseURL+loc), zap.Int("urls", len(urls)))
			return urls
		}
	}
	return nil
}

func (e *Engine) parseSitemapAt(ctx context.Context, sitemapURL string, followIndex bool) ([]string, error) {
	page, err := e.fetcher.Fetch(ctx, sitemapURL)
	if err != nil {
		return nil, fmt.Errorf("fetch sitemap: %w", err)
	}
	if page.StatusCode >= 400 {
		return nil, fmt.Errorf("sitemap status %d", page.StatusCode)
	}

	var urls []string
	err = sitemap.Parse(bytes.NewReader(page.Body), func(entry sitemap.Entry) error {
		urls = append(urls, entry.GetLocation())
		return nil
	})
	if err == nil && len(urls) > 0 {
		return urls, nil
	}

	if !followIndex {
		return nil, fmt.Errorf("parse sitemap: %w", err)
	}

	// Either invalid XML or a sitemap index: try the index shape, one level.
	var nested []string
	indexErr := sitemap.ParseIndex(bytes.NewReader(page.Body), func(entry sitemap.IndexEntry) error {
		nested = append(nested, entry.GetLocation())
		return nil
	})
	if indexErr != nil || len(nested) == 0 {
		return nil, fmt.Errorf("parse as sitemap or index: %w", err)
	}

	for _, nestedURL := range nested {
		nestedURLs, nestedErr := e.parseSitemapAt(ctx, nestedURL, false)
		if nestedErr != nil {
			e.logger.Warn("failed to fetch nested sitemap", zap.String("url", nestedURL), zap.Error(nestedErr))
			continue
		}
		urls = append(urls, nestedURLs...)
	}
	return urls, nil
}
