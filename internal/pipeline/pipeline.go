// Package pipeline wires discovery, acquisition, extraction, and merging
// into one batch run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/apiscout/apiscout/internal/cache"
	"github.com/apiscout/apiscout/internal/classify"
	"github.com/apiscout/apiscout/internal/config"
	"github.com/apiscout/apiscout/internal/content"
	"github.com/apiscout/apiscout/internal/discovery"
	"github.com/apiscout/apiscout/internal/extract"
	"github.com/apiscout/apiscout/internal/merge"
	"github.com/apiscout/apiscout/internal/scout"
)

// ErrNoPages is returned when discovery accepts nothing; with no pages there
// is nothing to extract and the run cannot produce a useful result.
var ErrNoPages = errors.New("discovery accepted no documentation pages")

// RunReport is the terminal summary of one pipeline run. Partial success,
// with some pages failed and some extracted, is a normal outcome.
type RunReport struct {
	RunID          string              `json:"run_id"`
	BaseURL        string              `json:"base_url"`
	StartedAt      time.Time           `json:"started_at"`
	Duration       time.Duration       `json:"duration"`
	PagesFound     int                 `json:"pages_found"`
	PagesFetched   int                 `json:"pages_fetched"`
	EndpointsFound int                 `json:"endpoints_found"`
	Failures       []scout.PageFailure `json:"failures,omitempty"`
	Cache          cache.Stats         `json:"cache"`
}

// Result bundles the merged endpoint set with its run report.
type Result struct {
	Endpoints []scout.MergedEndpoint `json:"endpoints"`
	Report    RunReport              `json:"report"`
}

// Pipeline owns the component graph for a run. The extractor is injected so
// the collaborator can be replaced with fixtures.
type Pipeline struct {
	cfg       config.Config
	extractor scout.Extractor
	logger    *zap.Logger
}

// New builds a pipeline from validated configuration.
func New(cfg config.Config, extractor scout.Extractor, logger *zap.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, extractor: extractor, logger: logger}
}

// Run executes the full pipeline against one site. Per-page failures are
// collected into the report; the run itself fails only when the cache cannot
// be initialized or discovery accepts nothing.
func (p *Pipeline) Run(ctx context.Context, baseURL string) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := p.logger.With(zap.String("run_id", runID))
	logger.Info("run starting", zap.String("base_url", baseURL))

	store, err := p.openCache(logger)
	if err != nil {
		return nil, fmt.Errorf("init cache: %w", err)
	}
	defer store.Close()

	fetcher, err := content.NewCollyFetcher(content.FetcherConfig{
		UserAgent:   p.cfg.HTTP.UserAgent,
		Timeout:     p.cfg.HTTPTimeout(),
		Concurrency: p.cfg.Discovery.Concurrency,
		RateDelay:   time.Duration(p.cfg.HTTP.RateDelayMs) * time.Millisecond,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("init fetcher: %w", err)
	}

	var renderer scout.Renderer
	if p.cfg.Renderer.Enabled {
		r, err := content.NewChromedpRenderer(content.RendererConfig{
			UserAgent:      p.cfg.HTTP.UserAgent,
			Timeout:        time.Duration(p.cfg.Renderer.NavTimeoutSec) * time.Second,
			MaxConcurrency: p.cfg.Renderer.MaxParallel,
			DomainQPS:      p.cfg.Renderer.DomainQPS,
		}, logger)
		if err != nil {
			// A missing browser degrades to static-only content.
			logger.Warn("renderer unavailable, SPA pages keep static content", zap.Error(err))
		} else {
			renderer = r
			defer r.Close(context.Background())
		}
	}

	robots := content.NewRobotsEnforcer(p.cfg.HTTP.RespectRobots, p.cfg.HTTP.UserAgent, p.cfg.HTTPTimeout(), logger)
	detector := content.NewSPADetector(p.cfg.Renderer.MinTextLength)
	acquirer := content.NewAcquirer(fetcher, renderer, detector, robots, store, logger)
	classifier := classify.New()

	engine := discovery.NewEngine(discovery.Config{
		BaseURL:      baseURL,
		MaxPages:     p.cfg.Discovery.MaxPages,
		MaxDepth:     p.cfg.Discovery.MaxDepth,
		Concurrency:  p.cfg.Discovery.Concurrency,
		LinksPerPage: p.cfg.Discovery.LinksPerPage,
		OverrideURLs: p.cfg.Discovery.OverrideURLs,
	}, acquirer, classifier, fetcher, logger)

	pages, failures, err := engine.Discover(ctx)
	if err != nil {
		return nil, fmt.Errorf("discovery: %w", err)
	}
	if len(pages) == 0 {
		return nil, ErrNoPages
	}

	// Re-acquiring discovered pages hits the page cache; override URLs take
	// their first trip through the acquirer here.
	var docs []scout.DocumentContent
	for _, page := range pages {
		doc, err := acquirer.Acquire(ctx, page.URL)
		if err != nil {
			failures = append(failures, scout.PageFailure{
				URL:    page.URL,
				Stage:  "content",
				Reason: err.Error(),
			})
			continue
		}
		docs = append(docs, doc)
	}
	if len(docs) == 0 {
		return nil, ErrNoPages
	}

	coordinator := extract.NewCoordinator(p.extractor, store, p.cfg.Extraction.Workers, logger)
	candidates, extractFailures := coordinator.Run(ctx, docs)
	failures = append(failures, extractFailures...)

	endpoints := merge.Sorted(merge.Merge(candidates))

	report := RunReport{
		RunID:          runID,
		BaseURL:        baseURL,
		StartedAt:      start.UTC(),
		Duration:       time.Since(start),
		PagesFound:     len(pages),
		PagesFetched:   len(docs),
		EndpointsFound: len(endpoints),
		Failures:       failures,
		Cache:          store.Stats(ctx),
	}
	logger.Info("run complete",
		zap.Int("pages_found", report.PagesFound),
		zap.Int("pages_fetched", report.PagesFetched),
		zap.Int("endpoints", report.EndpointsFound),
		zap.Int("failures", len(report.Failures)),
		zap.Duration("elapsed", report.Duration),
	)
	return &Result{Endpoints: endpoints, Report: report}, nil
}

// openCache builds the configured backend and wraps it in the store. Backend
// construction failure is fatal when caching is requested; failures after
// construction only degrade the store.
func (p *Pipeline) openCache(logger *zap.Logger) (*cache.Store, error) {
	opts := cache.Options{
		TTL:                p.cfg.CacheTTL(),
		PagesEnabled:       p.cfg.Cache.PagesEnabled,
		ExtractionsEnabled: p.cfg.Cache.ExtractionsEnabled,
		Clock:              scout.SystemClock{},
	}

	var backend cache.Backend
	switch p.cfg.Cache.Backend {
	case "sqlite":
		b, err := cache.NewSQLiteBackend(p.cfg.Cache.Path)
		if err != nil {
			return nil, err
		}
		backend = b
	default:
		backend = cache.NewMemoryBackend()
	}
	return cache.New(backend, opts, logger), nil
}
