// Package classify scores pages against API-documentation heuristics.
package classify

import (
	"regexp"
	"strings"

	"github.com/apiscout/apiscout/internal/scout"
)

// Reason tags attached to a classification result.
const (
	ReasonStrongURL      = "strong-url"
	ReasonModerateURL    = "url-pattern"
	ReasonKeywords       = "keywords"
	ReasonKeywordDensity = "keyword-density"
	ReasonEmbeddedSpec   = "embedded-spec"
)

// Result is the outcome of classifying one (url, content) pair. Classification
// is deterministic: the same pair always yields the same result.
type Result struct {
	Accepted bool
	Score    float64
	Reasons  []string
}

var strongURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/api.*docs?`),
	regexp.MustCompile(`/api.*reference`),
	regexp.MustCompile(`/rest.*api`),
	regexp.MustCompile(`/graphql`),
}

var moderateURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/api`),
	regexp.MustCompile(`/docs?`),
	regexp.MustCompile(`/documentation`),
	regexp.MustCompile(`/reference`),
	regexp.MustCompile(`/api.?reference`),
	regexp.MustCompile(`/developers?`),
	regexp.MustCompile(`/guides?`),
	regexp.MustCompile(`/tutorials?`),
	regexp.MustCompile(`/getting.?started`),
	regexp.MustCompile(`/quick.?start`),
	regexp.MustCompile(`/how.?to`),
	regexp.MustCompile(`/resources`),
	regexp.MustCompile(`/help`),
	regexp.MustCompile(`/support/api`),
	regexp.MustCompile(`/knowledge.?base`),
	regexp.MustCompile(`endpoint`),
	regexp.MustCompile(`authentication`),
	regexp.MustCompile(`authorization`),
	regexp.MustCompile(`/rest`),
	regexp.MustCompile(`/webhook`),
}

// apiKeywords is the fixed vocabulary counted against cleaned page text.
var apiKeywords = []string{
	"endpoint",
	"api",
	"request",
	"response",
	"authentication",
	"get",
	"post",
	"put",
	"delete",
	"parameter",
	"header",
	"body",
	"json",
}

// Thresholds for the keyword rules. No single rule generalizes across
// documentation styles; the OR of all four is what makes discovery stick.
const (
	moderateKeywordMin = 2
	densityKeywordMin  = 5
)

// Classifier applies the four-rule OR heuristic.
type Classifier struct{}

// New returns a Classifier.
func New() *Classifier {
	return &Classifier{}
}

// Classify scores a URL and its cleaned content. Any one matching rule
// accepts the page; the score is the strongest matched rule's weight.
func (c *Classifier) Classify(rawURL string, content scout.DocumentContent) Result {
	urlLower := strings.ToLower(rawURL)
	textLower := strings.ToLower(content.CleanedText)

	var res Result
	record := func(reason string, score float64) {
		res.Accepted = true
		res.Reasons = append(res.Reasons, reason)
		if score > res.Score {
			res.Score = score
		}
	}

	// Rule 1: strong URL pattern alone is sufficient.
	for _, p := range strongURLPatterns {
		if p.MatchString(urlLower) {
			record(ReasonStrongURL, 0.95)
			break
		}
	}

	// Rule 2: moderate URL pattern plus minimal keyword evidence.
	hits := countKeywords(textLower)
	if matchesAny(moderateURLPatterns, urlLower) && hits >= moderateKeywordMin {
		record(ReasonModerateURL, 0.75)
		res.Reasons = append(res.Reasons, ReasonKeywords)
	}

	// Rule 3: high keyword density regardless of URL shape.
	if hits >= densityKeywordMin {
		record(ReasonKeywordDensity, 0.7)
	}

	// Rule 4: embedded machine-readable spec.
	if HasSpecMarkers(content) {
		record(ReasonEmbeddedSpec, 0.9)
	}

	return res
}

// LikelyDocURL reports whether a URL alone matches documentation patterns.
// Discovery uses it to filter sitemap entries and to prioritize the crawl
// frontier before any content is available.
func (c *Classifier) LikelyDocURL(rawURL string) bool {
	urlLower := strings.ToLower(rawURL)
	return matchesAny(strongURLPatterns, urlLower) || matchesAny(moderateURLPatterns, urlLower)
}

// StrongDocURL reports whether a URL matches a strong documentation pattern.
func (c *Classifier) StrongDocURL(rawURL string) bool {
	return matchesAny(strongURLPatterns, strings.ToLower(rawURL))
}

// HasSpecMarkers reports whether the page text or a code sample contains the
// top-level keys of an OpenAPI or Swagger document.
func HasSpecMarkers(content scout.DocumentContent) bool {
	if hasSpecKeys(content.CleanedText) {
		return true
	}
	for _, sample := range content.CodeSamples {
		if hasSpecKeys(sample) {
			return true
		}
	}
	return false
}

func hasSpecKeys(text string) bool {
	lower := strings.ToLower(text)
	hasVersion := strings.Contains(lower, `"openapi"`) || strings.Contains(lower, `"swagger"`) ||
		strings.Contains(lower, "openapi:") || strings.Contains(lower, "swagger:")
	hasPaths := strings.Contains(lower, `"paths"`) || strings.Contains(lower, "paths:")
	return hasVersion && hasPaths
}

func matchesAny(patterns []*regexp.Regexp, s string) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

func countKeywords(textLower string) int {
	n := 0
	for _, kw := range apiKeywords {
		if strings.Contains(textLower, kw) {
			n++
		}
	}
	return n
}
