package extract

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/apiscout/apiscout/internal/cache"
	"github.com/apiscout/apiscout/internal/metrics"
	"github.com/apiscout/apiscout/internal/scout"
)

// DefaultWorkers bounds concurrent collaborator calls when the caller does
// not say otherwise.
const DefaultWorkers = 3

// Coordinator fans pages out to a bounded worker pool, short-circuiting
// through embedded specs and the content-keyed extraction cache before any
// collaborator call.
type Coordinator struct {
	extractor scout.Extractor
	store     *cache.Store
	workers   int
	logger    *zap.Logger
}

// NewCoordinator builds a coordinator with at most workers concurrent
// collaborator calls in flight.
func NewCoordinator(extractor scout.Extractor, store *cache.Store, workers int, logger *zap.Logger) *Coordinator {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Coordinator{
		extractor: extractor,
		store:     store,
		workers:   workers,
		logger:    logger,
	}
}

// Run extracts candidates from every page. The returned candidate order
// follows the page order, so the downstream fold is deterministic for a
// given page set. Per-page extraction failures yield an empty candidate
// list and a report entry, never a run failure.
func (c *Coordinator) Run(ctx context.Context, docs []scout.DocumentContent) ([]scout.ExtractionCandidate, []scout.PageFailure) {
	perPage := make([][]scout.ExtractionCandidate, len(docs))
	pageFailures := make([]*scout.PageFailure, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			cands, failure := c.extractOne(gctx, doc)
			perPage[i] = cands
			pageFailures[i] = failure
			return nil
		})
	}
	_ = g.Wait()

	var candidates []scout.ExtractionCandidate
	var failures []scout.PageFailure
	for i := range docs {
		candidates = append(candidates, perPage[i]...)
		if pageFailures[i] != nil {
			failures = append(failures, *pageFailures[i])
		}
	}
	return candidates, failures
}

func (c *Coordinator) extractOne(ctx context.Context, doc scout.DocumentContent) ([]scout.ExtractionCandidate, *scout.PageFailure) {
	if cands, ok := ParseEmbedded(doc); ok {
		metrics.EmbeddedSpecs.Inc()
		c.logger.Info("embedded spec found",
			zap.String("url", doc.URL),
			zap.Int("endpoints", len(cands)),
		)
		return cands, nil
	}

	// Content-keyed, not URL-keyed, so mirrored or redirected pages with
	// identical text share one cached result.
	key := cache.ContentKey(doc.CleanedText)
	if payload, ok := c.store.Get(ctx, cache.NamespaceExtractions, key); ok {
		var cands []scout.ExtractionCandidate
		if err := json.Unmarshal(payload, &cands); err == nil {
			return cands, nil
		}
		c.logger.Warn("discarding unreadable cached extraction", zap.String("url", doc.URL))
	}

	metrics.ExtractionCalls.Inc()
	cands, err := c.extractor.Extract(ctx, doc)
	if err != nil {
		metrics.ExtractionErrors.Inc()
		c.logger.Warn("extraction failed", zap.String("url", doc.URL), zap.Error(err))
		return nil, &scout.PageFailure{
			URL:    doc.URL,
			Stage:  "extraction",
			Reason: err.Error(),
		}
	}
	cands = sanitize(cands, doc.URL)

	if payload, err := json.Marshal(cands); err == nil {
		c.store.Set(ctx, cache.NamespaceExtractions, key, payload)
	}
	return cands, nil
}

// sanitize drops candidates the pipeline cannot place and backfills fields
// the collaborator is allowed to omit.
func sanitize(cands []scout.ExtractionCandidate, sourceURL string) []scout.ExtractionCandidate {
	out := cands[:0]
	for _, cand := range cands {
		method, ok := scout.ParseMethod(string(cand.Method))
		if !ok || strings.TrimSpace(cand.Path) == "" {
			continue
		}
		cand.Method = method
		if cand.SourceURL == "" {
			cand.SourceURL = sourceURL
		}
		out = append(out, cand)
	}
	return out
}
