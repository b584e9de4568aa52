// Package merge folds per-page endpoint candidates into one authoritative
// record per (path, method) pair.
package merge

import (
	"sort"
	"strings"

	"github.com/apiscout/apiscout/internal/scout"
)

// NormalizeEndpointPath brings candidate paths onto one canonical spelling so
// observations of the same endpoint collide: leading slash, no trailing slash
// except the root, and colon-style params rewritten as brace params.
func NormalizeEndpointPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}

	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if len(seg) > 1 && strings.HasPrefix(seg, ":") {
			segments[i] = "{" + seg[1:] + "}"
		}
	}
	return strings.Join(segments, "/")
}

// Merge folds candidates into merged endpoints. The fold is pure: candidates
// are never mutated and the same multiset of candidates always produces the
// same result. A strictly higher-confidence candidate replaces the endpoint's
// detail wholesale; an equal-confidence candidate fills gaps and unions
// collections; a lower-confidence one contributes provenance only.
func Merge(candidates []scout.ExtractionCandidate) map[scout.EndpointKey]scout.MergedEndpoint {
	endpoints := make(map[scout.EndpointKey]scout.MergedEndpoint)
	for _, cand := range candidates {
		key := scout.EndpointKey{
			Path:   NormalizeEndpointPath(cand.Path),
			Method: cand.Method,
		}
		existing, ok := endpoints[key]
		if !ok {
			endpoints[key] = fromCandidate(key, cand)
			continue
		}
		endpoints[key] = fold(existing, cand, key)
	}
	return endpoints
}

// Sorted flattens a merged endpoint map into a stable path-then-method order.
func Sorted(endpoints map[scout.EndpointKey]scout.MergedEndpoint) []scout.MergedEndpoint {
	out := make([]scout.MergedEndpoint, 0, len(endpoints))
	for _, ep := range endpoints {
		out = append(out, ep)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out
}

func fromCandidate(key scout.EndpointKey, cand scout.ExtractionCandidate) scout.MergedEndpoint {
	return scout.MergedEndpoint{
		Path:        key.Path,
		Method:      key.Method,
		Summary:     cand.Summary,
		Description: cand.Description,
		Parameters:  copyParameters(cand.Parameters),
		RequestBody: copyRequestBody(cand.RequestBody),
		Responses:   copyResponses(cand.Responses),
		Tags:        copyTags(cand.Tags),
		Confidence:  cand.Confidence,
		Provenance:  []string{cand.SourceURL},
	}
}

func fold(existing scout.MergedEndpoint, cand scout.ExtractionCandidate, key scout.EndpointKey) scout.MergedEndpoint {
	switch {
	case cand.Confidence.Rank() > existing.Confidence.Rank():
		replacement := fromCandidate(key, cand)
		replacement.Provenance = appendProvenance(existing.Provenance, cand.SourceURL)
		return replacement
	case cand.Confidence.Rank() == existing.Confidence.Rank():
		return union(existing, cand)
	default:
		existing.Provenance = appendProvenance(existing.Provenance, cand.SourceURL)
		return existing
	}
}

// union merges equal-confidence detail. Scalars keep the first non-empty
// value; parameters union by (name, location) and responses by status code,
// with the incumbent winning any per-item conflict.
func union(existing scout.MergedEndpoint, cand scout.ExtractionCandidate) scout.MergedEndpoint {
	if existing.Summary == "" {
		existing.Summary = cand.Summary
	}
	if existing.Description == "" {
		existing.Description = cand.Description
	}
	if existing.RequestBody == nil {
		existing.RequestBody = copyRequestBody(cand.RequestBody)
	}

	seenParams := make(map[string]struct{}, len(existing.Parameters))
	for _, p := range existing.Parameters {
		seenParams[paramKey(p)] = struct{}{}
	}
	for _, p := range cand.Parameters {
		if _, dup := seenParams[paramKey(p)]; dup {
			continue
		}
		seenParams[paramKey(p)] = struct{}{}
		existing.Parameters = append(existing.Parameters, p)
	}

	seenResponses := make(map[string]struct{}, len(existing.Responses))
	for _, r := range existing.Responses {
		seenResponses[r.StatusCode] = struct{}{}
	}
	for _, r := range cand.Responses {
		if _, dup := seenResponses[r.StatusCode]; dup {
			continue
		}
		seenResponses[r.StatusCode] = struct{}{}
		existing.Responses = append(existing.Responses, r)
	}

	seenTags := make(map[string]struct{}, len(existing.Tags))
	for _, t := range existing.Tags {
		seenTags[t] = struct{}{}
	}
	for _, t := range cand.Tags {
		if _, dup := seenTags[t]; dup {
			continue
		}
		seenTags[t] = struct{}{}
		existing.Tags = append(existing.Tags, t)
	}

	existing.Provenance = appendProvenance(existing.Provenance, cand.SourceURL)
	return existing
}

func paramKey(p scout.Parameter) string {
	return p.Name + "\x00" + string(p.Location)
}

func appendProvenance(provenance []string, sourceURL string) []string {
	if sourceURL == "" {
		return provenance
	}
	for _, p := range provenance {
		if p == sourceURL {
			return provenance
		}
	}
	out := make([]string, 0, len(provenance)+1)
	out = append(out, provenance...)
	return append(out, sourceURL)
}

func copyParameters(params []scout.Parameter) []scout.Parameter {
	if params == nil {
		return nil
	}
	out := make([]scout.Parameter, len(params))
	copy(out, params)
	return out
}

func copyResponses(responses []scout.Response) []scout.Response {
	if responses == nil {
		return nil
	}
	out := make([]scout.Response, len(responses))
	copy(out, responses)
	return out
}

func copyTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}

func copyRequestBody(rb *scout.RequestBody) *scout.RequestBody {
	if rb == nil {
		return nil
	}
	c := *rb
	return &c
}
