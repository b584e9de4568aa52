// Package discovery finds the candidate documentation page set for a site
// using seed paths, the sitemap, and a prioritized breadth-first crawl.
package discovery

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/apiscout/apiscout/internal/classify"
	"github.com/apiscout/apiscout/internal/metrics"
	"github.com/apiscout/apiscout/internal/scout"
)

// Acquirer is the slice of the content acquirer discovery needs.
type Acquirer interface {
	Acquire(ctx context.Context, rawURL string) (scout.DocumentContent, error)
}

// Config bounds a discovery run.
type Config struct {
	BaseURL      string
	MaxPages     int
	MaxDepth     int
	Concurrency  int
	LinksPerPage int
	OverrideURLs []string
}

// Engine runs the three discovery strategies in order and unions their
// accepted pages. Frontier and visited-set mutation stays on the single
// crawl-loop goroutine; only seed probing fans out.
type Engine struct {
	cfg        Config
	acquirer   Acquirer
	classifier *classify.Classifier
	fetcher    scout.Fetcher
	logger     *zap.Logger

	visited  map[string]struct{}
	accepted map[string]struct{}
	results  []scout.DiscoveredPage
	failures []scout.PageFailure
	links    map[string][]string
}

// NewEngine builds a discovery engine. fetcher is used for raw sitemap XML;
// page content goes through the acquirer so the page cache applies.
func NewEngine(cfg Config, acquirer Acquirer, classifier *classify.Classifier, fetcher scout.Fetcher, logger *zap.Logger) *Engine {
	if cfg.LinksPerPage <= 0 {
		cfg.LinksPerPage = 10
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &Engine{
		cfg:        cfg,
		acquirer:   acquirer,
		classifier: classifier,
		fetcher:    fetcher,
		logger:     logger,
		visited:    make(map[string]struct{}),
		accepted:   make(map[string]struct{}),
		links:      make(map[string][]string),
	}
}

// Discover produces the accepted page set. Per-URL failures are returned for
// the run report, never propagated as run failures.
func (e *Engine) Discover(ctx context.Context) ([]scout.DiscoveredPage, []scout.PageFailure, error) {
	if len(e.cfg.OverrideURLs) > 0 {
		return e.overridePages()
	}

	base, err := scout.NormalizeURL(e.cfg.BaseURL)
	if err != nil {
		return nil, nil, err
	}

	e.trySeedPaths(ctx, base)
	if !e.full() {
		e.trySitemap(ctx, base)
	}
	if !e.full() {
		e.crawl(ctx, base)
	}

	e.logger.Info("discovery complete",
		zap.Int("accepted", len(e.results)),
		zap.Int("failures", len(e.failures)),
	)
	return e.results, e.failures, nil
}

// overridePages turns caller-supplied URLs into accepted pages directly.
// Caller intent is authoritative: no classification is applied.
func (e *Engine) overridePages() ([]scout.DiscoveredPage, []scout.PageFailure, error) {
	var pages []scout.DiscoveredPage
	seen := make(map[string]struct{})
	for _, raw := range e.cfg.OverrideURLs {
		norm, err := scout.NormalizeURL(raw)
		if err != nil {
			e.failures = append(e.failures, scout.PageFailure{
				URL: raw, Stage: "discovery", Reason: err.Error(),
			})
			continue
		}
		if _, dup := seen[norm]; dup {
			continue
		}
		seen[norm] = struct{}{}
		pages = append(pages, scout.DiscoveredPage{
			URL:      norm,
			Depth:    0,
			Strategy: scout.StrategyOverride,
			Score:    1.0,
		})
	}
	return pages, e.failures, nil
}

func (e *Engine) full() bool {
	return e.cfg.MaxPages > 0 && len(e.results) >= e.cfg.MaxPages
}

type seedResult struct {
	url  string
	doc  scout.DocumentContent
	err  error
	norm string
}

// trySeedPaths probes common documentation paths concurrently, then folds the
// outcomes serially so the visited set stays single-writer.
func (e *Engine) trySeedPaths(ctx context.Context, base string) {
	baseHost := strings.TrimSuffix(base, "/")
	outcomes := make([]seedResult, len(seedPaths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Concurrency)
	for i, path := range seedPaths {
		i, path := i, path
		g.Go(func() error {
			raw := baseHost + path
			norm, err := scout.NormalizeURL(raw)
			if err != nil {
				outcomes[i] = seedResult{url: raw, err: err}
				return nil
			}
			doc, err := e.acquirer.Acquire(gctx, raw)
			outcomes[i] = seedResult{url: raw, norm: norm, doc: doc, err: err}
			return nil
		})
	}
	_ = g.Wait()

	for _, out := range outcomes {
		if out.norm == "" {
			continue
		}
		if _, ok := e.visited[out.norm]; ok {
			continue
		}
		e.visited[out.norm] = struct{}{}
		if out.err != nil {
			// Most seed probes 404; that is expected, not a reportable failure.
			e.logger.Debug("seed path miss", zap.String("url", out.url), zap.Error(out.err))
			continue
		}
		e.classifyAndRecord(out.norm, out.doc, 0, scout.StrategySeedPath)
		if e.full() {
			return
		}
	}
}

// trySitemap classifies documentation-looking sitemap entries.
func (e *Engine) trySitemap(ctx context.Context, base string) {
	baseHost := strings.TrimSuffix(base, "/")
	for _, raw := range e.fetchSitemapURLs(ctx, baseHost) {
		if e.full() {
			return
		}
		if !scout.SameHost(base, raw) {
			continue
		}
		if !e.classifier.LikelyDocURL(raw) {
			continue
		}
		norm, err := scout.NormalizeURL(raw)
		if err != nil {
			continue
		}
		if _, ok := e.visited[norm]; ok {
			continue
		}
		e.visited[norm] = struct{}{}

		doc, err := e.acquirer.Acquire(ctx, raw)
		if err != nil {
			e.recordFailure(raw, err)
			continue
		}
		e.classifyAndRecord(norm, doc, 0, scout.StrategySitemap)
	}
}

// crawl runs the prioritized breadth-first expansion from the base URL and
// every page accepted so far. Depth-monotonic: the frontier orders by depth
// before priority, so a depth d+1 page never dequeues before depth d is done.
func (e *Engine) crawl(ctx context.Context, base string) {
	fr := newFrontier()
	fr.Push(base, 0, e.linkPriority(base))
	for url, links := range e.links {
		e.enqueueLinks(fr, url, links, 1)
	}

	for {
		if err := ctx.Err(); err != nil {
			return
		}
		if e.full() {
			return
		}
		item, ok := fr.Pop()
		if !ok {
			return
		}
		if item.depth > e.cfg.MaxDepth {
			continue
		}
		norm, err := scout.NormalizeURL(item.url)
		if err != nil {
			continue
		}
		if _, seen := e.visited[norm]; seen {
			continue
		}
		e.visited[norm] = struct{}{}

		doc, err := e.acquirer.Acquire(ctx, item.url)
		if err != nil {
			e.recordFailure(item.url, err)
			continue
		}

		isBase := norm == base
		acceptedNow := e.classifyAndRecord(norm, doc, item.depth, scout.StrategyCrawl)

		// Only accepted pages and the base page feed the frontier.
		if (acceptedNow || isBase) && item.depth < e.cfg.MaxDepth {
			e.enqueueLinks(fr, doc.URL, doc.Links, item.depth+1)
		}
	}
}

// classifyAndRecord moves a fetched URL into its terminal state and reports
// whether it was accepted.
func (e *Engine) classifyAndRecord(norm string, doc scout.DocumentContent, depth int, strategy scout.DiscoveryStrategy) bool {
	res := e.classifier.Classify(norm, doc)
	if !res.Accepted {
		e.logger.Debug("page rejected", zap.String("url", norm))
		return false
	}
	if _, dup := e.accepted[norm]; dup {
		return true
	}
	e.accepted[norm] = struct{}{}
	e.results = append(e.results, scout.DiscoveredPage{
		URL:      norm,
		Depth:    depth,
		Strategy: strategy,
		Score:    res.Score,
	})
	e.links[norm] = doc.Links
	metrics.PagesAccepted.Inc()
	e.logger.Info("page accepted",
		zap.String("url", norm),
		zap.String("strategy", string(strategy)),
		zap.Float64("score", res.Score),
		zap.Strings("reasons", res.Reasons),
	)
	return true
}

// enqueueLinks resolves, scopes, and prioritizes a page's outbound links,
// keeping at most LinksPerPage of the best candidates.
func (e *Engine) enqueueLinks(fr *frontier, pageURL string, hrefs []string, depth int) {
	type candidate struct {
		url      string
		priority int
	}
	var candidates []candidate
	for _, href := range hrefs {
		abs := scout.ResolveRef(pageURL, href)
		if abs == "" {
			continue
		}
		if !scout.SameHost(e.cfg.BaseURL, abs) {
			continue
		}
		norm, err := scout.NormalizeURL(abs)
		if err != nil {
			continue
		}
		if _, seen := e.visited[norm]; seen {
			continue
		}
		candidates = append(candidates, candidate{url: abs, priority: e.linkPriority(abs)})
	}

	// Documentation-looking links first, then document order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].priority > candidates[j].priority
	})
	if len(candidates) > e.cfg.LinksPerPage {
		candidates = candidates[:e.cfg.LinksPerPage]
	}
	for _, c := range candidates {
		fr.Push(c.url, depth, c.priority)
	}
}

func (e *Engine) linkPriority(rawURL string) int {
	switch {
	case e.classifier.StrongDocURL(rawURL):
		return 2
	case e.classifier.LikelyDocURL(rawURL):
		return 1
	default:
		return 0
	}
}

func (e *Engine) recordFailure(url string, err error) {
	e.failures = append(e.failures, scout.PageFailure{
		URL:    url,
		Stage:  "discovery",
		Reason: err.Error(),
	})
	e.logger.Warn("page dropped", zap.String("url", url), zap.Error(err))
}
