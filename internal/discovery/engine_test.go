package discovery

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/apiscout/apiscout/internal/classify"
	"github.com/apiscout/apiscout/internal/scout"
)

// fakeAcquirer serves canned documents and records which URLs were asked for.
type fakeAcquirer struct {
	mu   sync.Mutex
	docs map[string]scout.DocumentContent
	seen []string
}

func (f *fakeAcquirer) Acquire(_ context.Context, rawURL string) (scout.DocumentContent, error) {
	norm, err := scout.NormalizeURL(rawURL)
	if err != nil {
		return scout.DocumentContent{}, err
	}
	f.mu.Lock()
	f.seen = append(f.seen, norm)
	f.mu.Unlock()

	doc, ok := f.docs[norm]
	if !ok {
		return scout.DocumentContent{}, &scout.FetchError{URL: rawURL, Err: fmt.Errorf("http status %d", http.StatusNotFound)}
	}
	return doc, nil
}

func (f *fakeAcquirer) sawURL(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.seen {
		if s == url {
			return true
		}
	}
	return false
}

// noSitemapFetcher answers 404 for every raw fetch, so the sitemap strategy
// finds nothing.
type noSitemapFetcher struct{}

func (noSitemapFetcher) Fetch(_ context.Context, rawURL string) (scout.Page, error) {
	return scout.Page{URL: rawURL, StatusCode: http.StatusNotFound}, nil
}

// sitemapFetcher serves a fixed sitemap body at /sitemap.xml.
type sitemapFetcher struct {
	body string
}

func (f sitemapFetcher) Fetch(_ context.Context, rawURL string) (scout.Page, error) {
	if rawURL == "https://example.com/sitemap.xml" {
		return scout.Page{URL: rawURL, StatusCode: http.StatusOK, Body: []byte(f.body)}, nil
	}
	return scout.Page{URL: rawURL, StatusCode: http.StatusNotFound}, nil
}

// indexSitemapFetcher serves a sitemap index plus its nested sitemaps.
type indexSitemapFetcher struct {
	bodies map[string]string
}

func (f indexSitemapFetcher) Fetch(_ context.Context, rawURL string) (scout.Page, error) {
	if body, ok := f.bodies[rawURL]; ok {
		return scout.Page{URL: rawURL, StatusCode: http.StatusOK, Body: []byte(body)}, nil
	}
	return scout.Page{URL: rawURL, StatusCode: http.StatusNotFound}, nil
}

func docPage(url string, links ...string) scout.DocumentContent {
	return scout.DocumentContent{
		URL:         url,
		Title:       "API Reference",
		CleanedText: "Every endpoint accepts a JSON request and returns a JSON response with authentication headers.",
		Links:       links,
		RenderMode:  scout.RenderStatic,
	}
}

func plainPage(url string, links ...string) scout.DocumentContent {
	return scout.DocumentContent{
		URL:         url,
		Title:       "Landing",
		CleanedText: "Welcome to our product. We make widgets for happy customers.",
		Links:       links,
		RenderMode:  scout.RenderStatic,
	}
}

func newTestEngine(cfg Config, acq Acquirer, fetcher scout.Fetcher) *Engine {
	return NewEngine(cfg, acq, classify.New(), fetcher, zap.NewNop())
}

func TestDiscoverOverrideURLsSkipDiscovery(t *testing.T) {
	t.Parallel()

	acq := &fakeAcquirer{docs: map[string]scout.DocumentContent{}}
	engine := newTestEngine(Config{
		BaseURL:      "https://example.com",
		MaxPages:     10,
		MaxDepth:     2,
		OverrideURLs: []string{"https://example.com/hidden/docs", "https://example.com/hidden/docs/", "bogus"},
	}, acq, noSitemapFetcher{})

	pages, failures, err := engine.Discover(context.Background())
	require.NoError(t, err)

	require.Len(t, pages, 1, "duplicate override spellings collapse")
	assert.Equal(t, "https://example.com/hidden/docs", pages[0].URL)
	assert.Equal(t, scout.StrategyOverride, pages[0].Strategy)
	assert.Equal(t, 1.0, pages[0].Score)
	assert.Empty(t, acq.seen, "override URLs bypass fetching and classification")

	require.Len(t, failures, 1)
	assert.Equal(t, "bogus", failures[0].URL)
}

func TestDiscoverSeedPaths(t *testing.T) {
	t.Parallel()

	acq := &fakeAcquirer{docs: map[string]scout.DocumentContent{
		"https://example.com/docs": docPage("https://example.com/docs"),
	}}
	engine := newTestEngine(Config{
		BaseURL:  "https://example.com",
		MaxPages: 10,
		MaxDepth: 0,
	}, acq, noSitemapFetcher{})

	pages, _, err := engine.Discover(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, pages)
	assert.Equal(t, "https://example.com/docs", pages[0].URL)
	assert.Equal(t, scout.StrategySeedPath, pages[0].Strategy)
	assert.Equal(t, 0, pages[0].Depth)
}

func TestDiscoverSitemapStrategy(t *testing.T) {
	t.Parallel()

	body := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://example.com/reference/payments</loc></url>
  <url><loc>https://example.com/blog/announcement</loc></url>
  <url><loc>https://other.com/reference/docs</loc></url>
</urlset>`

	acq := &fakeAcquirer{docs: map[string]scout.DocumentContent{
		"https://example.com/reference/payments": docPage("https://example.com/reference/payments"),
	}}
	engine := newTestEngine(Config{
		BaseURL:  "https://example.com",
		MaxPages: 10,
		MaxDepth: 0,
	}, acq, sitemapFetcher{body: body})

	pages, _, err := engine.Discover(context.Background())
	require.NoError(t, err)

	require.Len(t, pages, 1)
	assert.Equal(t, "https://example.com/reference/payments", pages[0].URL)
	assert.Equal(t, scout.StrategySitemap, pages[0].Strategy)

	assert.False(t, acq.sawURL("https://example.com/blog/announcement"),
		"non-documentation sitemap entries are not fetched")
	assert.False(t, acq.sawURL("https://other.com/reference/docs"),
		"cross-host sitemap entries are out of scope")
}

func TestDiscoverSitemapIndexStrategy(t *testing.T) {
	t.Parallel()

	index := `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>https://example.com/sitemaps/docs.xml</loc></sitemap>
  <sitemap><loc>https://example.com/sitemaps/missing.xml</loc></sitemap>
</sitemapindex>`
	docs := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://example.com/reference/billing</loc></url>
  <url><loc>https://example.com/blog/notes</loc></url>
</urlset>`

	acq := &fakeAcquirer{docs: map[string]scout.DocumentContent{
		"https://example.com/reference/billing": docPage("https://example.com/reference/billing"),
	}}
	engine := newTestEngine(Config{
		BaseURL:  "https://example.com",
		MaxPages: 10,
		MaxDepth: 0,
	}, acq, indexSitemapFetcher{bodies: map[string]string{
		"https://example.com/sitemap_index.xml": index,
		"https://example.com/sitemaps/docs.xml": docs,
	}})

	pages, _, err := engine.Discover(context.Background())
	require.NoError(t, err)

	require.Len(t, pages, 1, "nested sitemap entries are discovered through the index")
	assert.Equal(t, "https://example.com/reference/billing", pages[0].URL)
	assert.Equal(t, scout.StrategySitemap, pages[0].Strategy)

	assert.False(t, acq.sawURL("https://example.com/blog/notes"),
		"non-documentation entries from nested sitemaps are not fetched")
}

func TestDiscoverCrawlBoundedByMaxPages(t *testing.T) {
	t.Parallel()

	base := "https://example.com/"
	links := []string{
		"/pricing",
		"/api/docs/payments",
		"/blog",
		"/api/docs/users",
		"/about",
		"/features",
		"/contact",
		"/careers",
		"/team",
		"/press",
	}
	docs := map[string]scout.DocumentContent{base: plainPage(base, links...)}
	for _, l := range links {
		url := "https://example.com" + l
		docs[url] = docPage(url)
	}

	acq := &fakeAcquirer{docs: docs}
	engine := newTestEngine(Config{
		BaseURL:  "https://example.com",
		MaxPages: 2,
		MaxDepth: 2,
	}, acq, noSitemapFetcher{})

	pages, _, err := engine.Discover(context.Background())
	require.NoError(t, err)

	// Every linked page would classify; the bound picks the two strongest
	// documentation URLs, not an arbitrary pair.
	require.Len(t, pages, 2)
	assert.Equal(t, "https://example.com/api/docs/payments", pages[0].URL)
	assert.Equal(t, "https://example.com/api/docs/users", pages[1].URL)
	assert.Equal(t, scout.StrategyCrawl, pages[0].Strategy)
	assert.Equal(t, 1, pages[0].Depth)
}

func TestDiscoverCrawlStaysOnHost(t *testing.T) {
	t.Parallel()

	base := "https://example.com/"
	docs := map[string]scout.DocumentContent{
		base: plainPage(base, "https://external.com/api/docs", "/api/docs"),
		"https://example.com/api/docs": docPage("https://example.com/api/docs"),
	}

	acq := &fakeAcquirer{docs: docs}
	engine := newTestEngine(Config{
		BaseURL:  "https://example.com",
		MaxPages: 10,
		MaxDepth: 2,
	}, acq, noSitemapFetcher{})

	pages, _, err := engine.Discover(context.Background())
	require.NoError(t, err)

	require.Len(t, pages, 1)
	assert.Equal(t, "https://example.com/api/docs", pages[0].URL)
	assert.False(t, acq.sawURL("https://external.com/api/docs"))
}

func TestDiscoverRespectsMaxDepth(t *testing.T) {
	t.Parallel()

	base := "https://example.com/"
	docs := map[string]scout.DocumentContent{
		base: plainPage(base, "/developer-hub"),
		"https://example.com/developer-hub":      docPage("https://example.com/developer-hub", "/developer-hub/deep"),
		"https://example.com/developer-hub/deep": docPage("https://example.com/developer-hub/deep"),
	}

	acq := &fakeAcquirer{docs: docs}
	engine := newTestEngine(Config{
		BaseURL:  "https://example.com",
		MaxPages: 10,
		MaxDepth: 1,
	}, acq, noSitemapFetcher{})

	pages, _, err := engine.Discover(context.Background())
	require.NoError(t, err)

	for _, p := range pages {
		assert.LessOrEqual(t, p.Depth, 1)
	}
	assert.True(t, acq.sawURL("https://example.com/developer-hub"))
	assert.False(t, acq.sawURL("https://example.com/developer-hub/deep"),
		"pages past the depth bound are never fetched")
}

func TestDiscoverRecordsCrawlFailures(t *testing.T) {
	t.Parallel()

	base := "https://example.com/"
	docs := map[string]scout.DocumentContent{
		// Base links to a page that will 404 and one that works.
		base: plainPage(base, "/api/docs/broken", "/api/docs"),
		"https://example.com/api/docs": docPage("https://example.com/api/docs"),
	}

	acq := &fakeAcquirer{docs: docs}
	engine := newTestEngine(Config{
		BaseURL:  "https://example.com",
		MaxPages: 10,
		MaxDepth: 1,
	}, acq, noSitemapFetcher{})

	pages, failures, err := engine.Discover(context.Background())
	require.NoError(t, err)

	require.Len(t, pages, 1)
	require.Len(t, failures, 1)
	assert.Equal(t, "https://example.com/api/docs/broken", failures[0].URL)
	assert.Equal(t, "discovery", failures[0].Stage)
}
