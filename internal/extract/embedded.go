// Package extract turns cleaned documentation pages into endpoint
// candidates, either by parsing a machine-readable spec embedded in the page
// or by delegating to the extraction collaborator.
package extract

import (
	"encoding/json"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/apiscout/apiscout/internal/scout"
)

// ParseEmbedded scans a page for an embedded OpenAPI or Swagger document and
// converts it directly into candidates. Code samples are checked before the
// page text since specs usually ship inside a pre block. Returns false when
// no spec document is present.
func ParseEmbedded(doc scout.DocumentContent) ([]scout.ExtractionCandidate, bool) {
	var texts []string
	texts = append(texts, doc.CodeSamples...)
	texts = append(texts, doc.CleanedText)

	for _, text := range texts {
		spec, ok := decodeSpec(text)
		if !ok {
			continue
		}
		return convertSpec(spec, doc.URL), true
	}
	return nil, false
}

// decodeSpec parses text as JSON or YAML and checks for the spec shape: an
// openapi or swagger version marker plus a paths object.
func decodeSpec(text string) (map[string]any, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false
	}

	var root map[string]any
	if strings.HasPrefix(text, "{") {
		if err := json.Unmarshal([]byte(text), &root); err != nil {
			return nil, false
		}
	} else if strings.Contains(text, "openapi") || strings.Contains(text, "swagger") {
		if err := yaml.Unmarshal([]byte(text), &root); err != nil {
			return nil, false
		}
	} else {
		return nil, false
	}

	if getString(root, "openapi") == "" && getString(root, "swagger") == "" {
		return nil, false
	}
	if _, ok := root["paths"].(map[string]any); !ok {
		return nil, false
	}
	return root, true
}

// convertSpec flattens the paths object into one candidate per operation.
// Spec-sourced candidates carry high confidence: the document is the API's
// own description of itself.
func convertSpec(root map[string]any, sourceURL string) []scout.ExtractionCandidate {
	paths, _ := root["paths"].(map[string]any)
	var out []scout.ExtractionCandidate
	for path, rawItem := range paths {
		item, ok := rawItem.(map[string]any)
		if !ok {
			continue
		}
		for verb, rawOp := range item {
			method, known := scout.ParseMethod(verb)
			if !known {
				continue
			}
			op, _ := rawOp.(map[string]any)
			cand := scout.ExtractionCandidate{
				Path:        path,
				Method:      method,
				Summary:     getString(op, "summary"),
				Description: getString(op, "description"),
				Parameters:  convertParameters(op),
				RequestBody: convertRequestBody(op),
				Responses:   convertResponses(op),
				Tags:        getStrings(op, "tags"),
				Confidence:  scout.ConfidenceHigh,
				SourceURL:   sourceURL,
			}
			out = append(out, cand)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out
}

func convertParameters(op map[string]any) []scout.Parameter {
	raw, _ := op["parameters"].([]any)
	var params []scout.Parameter
	for _, rp := range raw {
		p, ok := rp.(map[string]any)
		if !ok {
			continue
		}
		param := scout.Parameter{
			Name:        getString(p, "name"),
			Location:    scout.ParameterLocation(getString(p, "in")),
			Description: getString(p, "description"),
			Required:    getBool(p, "required"),
		}
		if schema, ok := p["schema"].(map[string]any); ok {
			param.Type = getString(schema, "type")
		}
		if param.Type == "" {
			param.Type = getString(p, "type") // swagger 2.0 inlines the type
		}
		if param.Name != "" {
			params = append(params, param)
		}
	}
	return params
}

func convertRequestBody(op map[string]any) *scout.RequestBody {
	rb, ok := op["requestBody"].(map[string]any)
	if !ok {
		return nil
	}
	body := &scout.RequestBody{
		Description: getString(rb, "description"),
		Required:    getBool(rb, "required"),
	}
	if content, ok := rb["content"].(map[string]any); ok {
		body.ContentType = firstKey(content)
	}
	return body
}

func convertResponses(op map[string]any) []scout.Response {
	raw, _ := op["responses"].(map[string]any)
	var responses []scout.Response
	for status, rr := range raw {
		resp := scout.Response{StatusCode: status}
		if r, ok := rr.(map[string]any); ok {
			resp.Description = getString(r, "description")
			if content, ok := r["content"].(map[string]any); ok {
				resp.ContentType = firstKey(content)
			}
		}
		responses = append(responses, resp)
	}
	sort.Slice(responses, func(i, j int) bool {
		return responses[i].StatusCode < responses[j].StatusCode
	})
	return responses
}

func getString(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func getBool(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

func getStrings(m map[string]any, key string) []string {
	raw, _ := m[key].([]any)
	var out []string
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func firstKey(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		return ""
	}
	return keys[0]
}
