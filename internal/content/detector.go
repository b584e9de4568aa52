package content

import (
	"regexp"
	"strings"
)

// Framework markers that suggest a client-side rendered shell.
var spaMarkers = []*regexp.Regexp{
	regexp.MustCompile(`<div\s+id=['"]root['"]`),
	regexp.MustCompile(`<div\s+id=['"]app['"]`),
	regexp.MustCompile(`(?i)react`),
	regexp.MustCompile(`(?i)vue`),
	regexp.MustCompile(`(?i)angular`),
	regexp.MustCompile(`(?i)ng-app`),
	regexp.MustCompile(`(?i)data-reactroot`),
}

// SPADetector decides whether a fetched page needs headless rendering.
// False positives cost a slow re-fetch; false negatives cost endpoints, so
// the threshold is biased toward rendering.
type SPADetector struct {
	minTextLen int
}

// NewSPADetector builds a detector with the given cleaned-text threshold.
func NewSPADetector(minTextLen int) *SPADetector {
	return &SPADetector{minTextLen: minTextLen}
}

// NeedsRender reports whether the page looks like an unrendered SPA shell:
// minimal cleaned text combined with a known framework marker in the raw HTML.
func (d *SPADetector) NeedsRender(rawHTML []byte, cleanedText string) bool {
	if d == nil || d.minTextLen <= 0 {
		return false
	}
	if len(strings.TrimSpace(cleanedText)) >= d.minTextLen {
		return false
	}
	for _, marker := range spaMarkers {
		if marker.Match(rawHTML) {
			return true
		}
	}
	return false
}
