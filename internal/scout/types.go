// Package scout defines the core types and interfaces shared by the
// discovery, acquisition, extraction, and merge stages.
package scout

import "strings"

// Confidence is the ordered label the extraction collaborator attaches to
// each candidate. Ordering: low < medium < high.
type Confidence string

// Confidence levels as reported by the extraction collaborator.
const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Rank maps a confidence label onto a comparable integer. Unknown labels
// rank below low so malformed collaborator output never overrides detail.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	default:
		return 0
	}
}

// HTTPMethod is a lowercase HTTP verb.
type HTTPMethod string

// Supported HTTP methods for extracted endpoints.
const (
	MethodGet     HTTPMethod = "get"
	MethodPost    HTTPMethod = "post"
	MethodPut     HTTPMethod = "put"
	MethodDelete  HTTPMethod = "delete"
	MethodPatch   HTTPMethod = "patch"
	MethodHead    HTTPMethod = "head"
	MethodOptions HTTPMethod = "options"
)

var knownMethods = map[HTTPMethod]struct{}{
	MethodGet: {}, MethodPost: {}, MethodPut: {}, MethodDelete: {},
	MethodPatch: {}, MethodHead: {}, MethodOptions: {},
}

// ParseMethod normalizes a verb string and reports whether it is recognized.
func ParseMethod(raw string) (HTTPMethod, bool) {
	m := HTTPMethod(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := knownMethods[m]
	return m, ok
}

// DiscoveryStrategy records which discovery path produced a page.
type DiscoveryStrategy string

// Discovery strategies, in the order they run.
const (
	StrategySeedPath DiscoveryStrategy = "seed-path"
	StrategySitemap  DiscoveryStrategy = "sitemap"
	StrategyCrawl    DiscoveryStrategy = "crawl"
	StrategyOverride DiscoveryStrategy = "override"
)

// RenderMode records how a page's content was obtained.
type RenderMode string

// Render modes.
const (
	RenderStatic   RenderMode = "static"
	RenderRendered RenderMode = "rendered"
)

// DiscoveredPage is an accepted documentation page. Immutable once added to
// the discovery result set; deduplicated by normalized URL.
type DiscoveredPage struct {
	URL      string            `json:"url"`
	Depth    int               `json:"depth"`
	Strategy DiscoveryStrategy `json:"strategy"`
	Score    float64           `json:"score"`
}

// DocumentContent is the cleaned output of the content acquirer for one URL.
type DocumentContent struct {
	URL           string     `json:"url"`
	Title         string     `json:"title"`
	RawTextLength int        `json:"raw_text_length"`
	CleanedText   string     `json:"cleaned_text"`
	CodeSamples   []string   `json:"code_samples"`
	Links         []string   `json:"links,omitempty"`
	RenderMode    RenderMode `json:"render_mode"`
}

// ParameterLocation is where a request parameter lives.
type ParameterLocation string

// Parameter locations.
const (
	InQuery  ParameterLocation = "query"
	InHeader ParameterLocation = "header"
	InPath   ParameterLocation = "path"
	InCookie ParameterLocation = "cookie"
)

// Parameter describes one request parameter of an endpoint.
type Parameter struct {
	Name        string            `json:"name"`
	Location    ParameterLocation `json:"location"`
	Description string            `json:"description,omitempty"`
	Required    bool              `json:"required"`
	Type        string            `json:"type,omitempty"`
	Example     string            `json:"example,omitempty"`
}

// RequestBody describes the request payload of an endpoint.
type RequestBody struct {
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
	ContentType string `json:"content_type,omitempty"`
	Example     string `json:"example,omitempty"`
}

// Response describes one documented response of an endpoint.
type Response struct {
	StatusCode  string `json:"status_code"`
	Description string `json:"description,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Example     string `json:"example,omitempty"`
}

// ExtractionCandidate is one endpoint observation produced by the extraction
// collaborator (or the embedded-spec parser) for a single page. Immutable.
type ExtractionCandidate struct {
	Path        string       `json:"path"`
	Method      HTTPMethod   `json:"method"`
	Summary     string       `json:"summary,omitempty"`
	Description string       `json:"description,omitempty"`
	Parameters  []Parameter  `json:"parameters,omitempty"`
	RequestBody *RequestBody `json:"request_body,omitempty"`
	Responses   []Response   `json:"responses,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	Confidence  Confidence   `json:"confidence"`
	SourceURL   string       `json:"source_url"`
}

// EndpointKey uniquely identifies a merged endpoint.
type EndpointKey struct {
	Path   string
	Method HTTPMethod
}

// PageFailure records a non-fatal per-URL failure surfaced in the run report.
type PageFailure struct {
	URL    string `json:"url"`
	Stage  string `json:"stage"`
	Reason string `json:"reason"`
}

// MergedEndpoint is the authoritative record for one (path, method) pair,
// folded from every candidate that observed it.
type MergedEndpoint struct {
	Path        string       `json:"path"`
	Method      HTTPMethod   `json:"method"`
	Summary     string       `json:"summary,omitempty"`
	Description string       `json:"description,omitempty"`
	Parameters  []Parameter  `json:"parameters,omitempty"`
	RequestBody *RequestBody `json:"request_body,omitempty"`
	Responses   []Response   `json:"responses,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	Confidence  Confidence   `json:"confidence"`
	Provenance  []string     `json:"provenance"`
}
