// Package content fetches documentation pages and turns them into cleaned
// text plus code samples, escalating to a headless renderer when a page is
// client-side rendered.
package content

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/apiscout/apiscout/internal/scout"
)

// Elements stripped before text extraction: navigation, chrome, scripts.
var removeSelectors = []string{"nav", "footer", "header", "aside", "script", "style", "noscript"}

var contentClassPattern = regexp.MustCompile(`content|documentation|docs`)

var (
	multiBlank  = regexp.MustCompile(`\n\s*\n`)
	multiSpace  = regexp.MustCompile(` +`)
	minCodeLen  = 10
	minLineRune = 3
)

// CleanHTML parses raw HTML into a DocumentContent: title, code samples in
// document order, and cleaned body text with navigation artifacts removed.
func CleanHTML(rawURL string, html []byte) (scout.DocumentContent, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return scout.DocumentContent{}, err
	}

	title := extractTitle(doc)
	samples := extractCodeSamples(doc)
	links := extractLinks(doc)

	for _, sel := range removeSelectors {
		doc.Find(sel).Remove()
	}

	text := cleanText(extractText(doc))

	return scout.DocumentContent{
		URL:           rawURL,
		Title:         title,
		RawTextLength: len(html),
		CleanedText:   text,
		CodeSamples:   samples,
		Links:         links,
		RenderMode:    scout.RenderStatic,
	}, nil
}

func extractLinks(doc *goquery.Document) []string {
	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			href = strings.TrimSpace(href)
			if href != "" {
				links = append(links, href)
			}
		}
	})
	return links
}

// JSONContent wraps a raw JSON response body as a DocumentContent. The body
// doubles as a code sample so the embedded-spec parser sees it.
func JSONContent(rawURL string, body []byte) scout.DocumentContent {
	text := string(body)
	return scout.DocumentContent{
		URL:           rawURL,
		Title:         "JSON API Spec",
		RawTextLength: len(body),
		CleanedText:   text,
		CodeSamples:   []string{text},
		RenderMode:    scout.RenderStatic,
	}
}

func extractTitle(doc *goquery.Document) string {
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return "Untitled"
}

func extractCodeSamples(doc *goquery.Document) []string {
	var samples []string
	seen := make(map[string]struct{})
	doc.Find("pre, code").Each(func(_ int, s *goquery.Selection) {
		// A <code> nested in an already-captured <pre> would duplicate it.
		if s.Is("code") && s.ParentsFiltered("pre").Length() > 0 {
			return
		}
		code := strings.TrimSpace(s.Text())
		if len(code) <= minCodeLen {
			return
		}
		if _, dup := seen[code]; dup {
			return
		}
		seen[code] = struct{}{}
		samples = append(samples, code)
	})
	return samples
}

func extractText(doc *goquery.Document) string {
	main := doc.Find("main").First()
	if main.Length() == 0 {
		main = doc.Find("article").First()
	}
	if main.Length() == 0 {
		main = doc.Find("div").FilterFunction(func(_ int, s *goquery.Selection) bool {
			class, _ := s.Attr("class")
			return contentClassPattern.MatchString(strings.ToLower(class))
		}).First()
	}
	if main.Length() == 0 {
		main = doc.Find("body").First()
	}
	if main.Length() == 0 {
		return doc.Text()
	}
	return main.Text()
}

func cleanText(text string) string {
	text = multiBlank.ReplaceAllString(text, "\n\n")
	text = multiSpace.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		// Very short lines are usually navigation leftovers.
		if len(trimmed) > minLineRune || trimmed == "" {
			kept = append(kept, strings.TrimSpace(line))
		}
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
