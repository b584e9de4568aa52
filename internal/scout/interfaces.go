package scout

import (
	"context"
	"net/http"
	"time"
)

// Page is the raw result of fetching a URL, before cleaning.
type Page struct {
	URL        string
	FinalURL   string
	StatusCode int
	Headers    http.Header
	Body       []byte
	UsedJS     bool
}

// Fetcher retrieves a page over plain HTTP.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (Page, error)
}

// Renderer executes a page with JavaScript enabled and returns the DOM
// snapshot. Invoked only when the acquirer's SPA heuristic fires.
type Renderer interface {
	Render(ctx context.Context, rawURL string) (Page, error)
	Close(ctx context.Context) error
}

// Extractor is the semantic-extraction collaborator: page text and code
// samples in, candidate endpoint records out. Its reasoning is opaque; tests
// substitute deterministic stubs.
type Extractor interface {
	Extract(ctx context.Context, content DocumentContent) ([]ExtractionCandidate, error)
}

// RobotsPolicy reports whether fetching a URL is permitted.
type RobotsPolicy interface {
	Allowed(ctx context.Context, rawURL string) bool
}

// Clock returns the current time (useful for testing TTL expiry).
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall-clock Clock used outside of tests.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }
