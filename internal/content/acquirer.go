package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/apiscout/apiscout/internal/cache"
	"github.com/apiscout/apiscout/internal/metrics"
	"github.com/apiscout/apiscout/internal/scout"
)

// ErrRobotsDisallowed indicates robots.txt forbids fetching the URL.
var ErrRobotsDisallowed = errors.New("disallowed by robots.txt")

// Acquirer turns a URL into a DocumentContent: static fetch first, headless
// render when the SPA heuristic fires, both behind the page-cache namespace.
type Acquirer struct {
	fetcher  scout.Fetcher
	renderer scout.Renderer
	detector *SPADetector
	robots   scout.RobotsPolicy
	store    *cache.Store
	logger   *zap.Logger
}

// NewAcquirer wires an Acquirer. renderer may be nil when rendering is
// disabled; SPA pages then keep their static content.
func NewAcquirer(
	fetcher scout.Fetcher,
	renderer scout.Renderer,
	detector *SPADetector,
	robots scout.RobotsPolicy,
	store *cache.Store,
	logger *zap.Logger,
) *Acquirer {
	return &Acquirer{
		fetcher:  fetcher,
		renderer: renderer,
		detector: detector,
		robots:   robots,
		store:    store,
		logger:   logger,
	}
}

// Acquire fetches, cleans, and caches one URL. A cache hit skips the network
// entirely, including the SPA decision; the cached render mode is reused.
// Failures are per-URL: the caller drops the page and continues.
func (a *Acquirer) Acquire(ctx context.Context, rawURL string) (scout.DocumentContent, error) {
	norm, err := scout.NormalizeURL(rawURL)
	if err != nil {
		return scout.DocumentContent{}, &scout.FetchError{URL: rawURL, Err: err}
	}
	key := cache.URLKey(norm)

	if payload, ok := a.store.Get(ctx, cache.NamespacePages, key); ok {
		var cached scout.DocumentContent
		if err := json.Unmarshal(payload, &cached); err == nil {
			a.logger.Debug("page cache hit", zap.String("url", norm))
			return cached, nil
		}
		a.logger.Warn("discarding undecodable page cache entry", zap.String("url", norm))
	}

	if !a.robots.Allowed(ctx, rawURL) {
		return scout.DocumentContent{}, &scout.FetchError{URL: rawURL, Err: ErrRobotsDisallowed}
	}

	page, err := a.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		metrics.FetchErrors.Inc()
		return scout.DocumentContent{}, &scout.FetchError{URL: rawURL, Err: err}
	}
	if page.StatusCode >= 400 {
		metrics.FetchErrors.Inc()
		return scout.DocumentContent{}, &scout.FetchError{
			URL: rawURL,
			Err: fmt.Errorf("http status %d", page.StatusCode),
		}
	}
	metrics.PagesFetched.Inc()

	doc, err := a.buildContent(ctx, rawURL, page)
	if err != nil {
		return scout.DocumentContent{}, err
	}

	if payload, err := json.Marshal(doc); err == nil {
		a.store.Set(ctx, cache.NamespacePages, key, payload)
	}
	return doc, nil
}

func (a *Acquirer) buildContent(ctx context.Context, rawURL string, page scout.Page) (scout.DocumentContent, error) {
	if isJSONResponse(page) {
		return JSONContent(rawURL, page.Body), nil
	}

	doc, err := CleanHTML(rawURL, page.Body)
	if err != nil {
		return scout.DocumentContent{}, &scout.FetchError{URL: rawURL, Err: err}
	}

	if a.renderer == nil || !a.detector.NeedsRender(page.Body, doc.CleanedText) {
		return doc, nil
	}

	rendered, err := a.renderer.Render(ctx, rawURL)
	if err != nil {
		// Rendering failure is not fatal: keep the static content.
		renderErr := &scout.RenderError{URL: rawURL, Err: err}
		a.logger.Warn("render fallback to static content", zap.Error(renderErr))
		return doc, nil
	}
	metrics.PagesRendered.Inc()

	renderedDoc, err := CleanHTML(rawURL, rendered.Body)
	if err != nil {
		a.logger.Warn("cleaning rendered page failed; keeping static content",
			zap.String("url", rawURL), zap.Error(err))
		return doc, nil
	}
	renderedDoc.RenderMode = scout.RenderRendered
	return renderedDoc, nil
}

func isJSONResponse(page scout.Page) bool {
	ct := strings.ToLower(page.Headers.Get("Content-Type"))
	return strings.Contains(ct, "application/json")
}
