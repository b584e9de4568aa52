// Package metrics exposes prometheus counters for the pipeline stages.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PagesFetched tracks static fetches that returned a usable response.
	PagesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "apiscout_pages_fetched_total",
		Help: "The total number of pages fetched over plain HTTP.",
	})
	// PagesRendered tracks pages escalated to the headless renderer.
	PagesRendered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "apiscout_pages_rendered_total",
		Help: "The total number of pages rendered with JavaScript enabled.",
	})
	// FetchErrors tracks failed page fetches.
	FetchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "apiscout_fetch_errors_total",
		Help: "The total number of failed page fetches.",
	})
	// PagesAccepted tracks pages that passed documentation classification.
	PagesAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "apiscout_pages_accepted_total",
		Help: "The total number of pages accepted as API documentation.",
	})
	// ExtractionCalls tracks invocations of the extraction collaborator.
	ExtractionCalls = promauto.NewCounter(prometheus.CounterOpts{
		Name: "apiscout_extraction_calls_total",
		Help: "The total number of calls made to the extraction collaborator.",
	})
	// ExtractionErrors tracks per-page extraction failures.
	ExtractionErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "apiscout_extraction_errors_total",
		Help: "The total number of failed extraction calls.",
	})
	// EmbeddedSpecs tracks pages resolved by the embedded-spec short circuit.
	EmbeddedSpecs = promauto.NewCounter(prometheus.CounterOpts{
		Name: "apiscout_embedded_specs_total",
		Help: "The total number of pages whose spec was parsed directly, skipping extraction.",
	})
	// CacheHits tracks cache hits per namespace.
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "apiscout_cache_hits_total",
		Help: "The total number of cache hits, per namespace.",
	}, []string{"namespace"})
	// CacheMisses tracks cache misses per namespace.
	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "apiscout_cache_misses_total",
		Help: "The total number of cache misses, per namespace.",
	}, []string{"namespace"})
)
