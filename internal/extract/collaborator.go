package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/apiscout/apiscout/internal/scout"
)

// extractionInstruction is the fixed instruction sent with every page. The
// collaborator's reasoning is opaque; only this contract is ours.
const extractionInstruction = "Identify every HTTP API endpoint documented in the supplied page text " +
	"and code samples. For each endpoint return its path, method, summary, " +
	"description, parameters, request body, responses, and tags, plus a " +
	"confidence label of low, medium, or high."

// HTTPExtractor calls the semantic-extraction collaborator over HTTP. It
// posts the page text, code samples, and the fixed instruction and expects a
// JSON candidate list back.
type HTTPExtractor struct {
	endpoint string
	apiKey   string
	client   *http.Client
	logger   *zap.Logger
}

// HTTPExtractorConfig configures the collaborator client.
type HTTPExtractorConfig struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// NewHTTPExtractor builds the collaborator client. Timeout applies per call.
func NewHTTPExtractor(cfg HTTPExtractorConfig, logger *zap.Logger) *HTTPExtractor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &HTTPExtractor{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		client:   &http.Client{Timeout: cfg.Timeout},
		logger:   logger,
	}
}

type extractionRequest struct {
	URL         string   `json:"url"`
	Text        string   `json:"text"`
	CodeSamples []string `json:"code_samples,omitempty"`
	Instruction string   `json:"instruction"`
}

type extractionResponse struct {
	Candidates []scout.ExtractionCandidate `json:"candidates"`
}

// Extract implements scout.Extractor.
func (e *HTTPExtractor) Extract(ctx context.Context, doc scout.DocumentContent) ([]scout.ExtractionCandidate, error) {
	payload, err := json.Marshal(extractionRequest{
		URL:         doc.URL,
		Text:        doc.CleanedText,
		CodeSamples: doc.CodeSamples,
		Instruction: extractionInstruction,
	})
	if err != nil {
		return nil, &scout.ExtractionError{URL: doc.URL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &scout.ExtractionError{URL: doc.URL, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	start := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &scout.ExtractionError{URL: doc.URL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, &scout.ExtractionError{URL: doc.URL, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &scout.ExtractionError{
			URL: doc.URL,
			Err: fmt.Errorf("collaborator returned status %d", resp.StatusCode),
		}
	}

	var parsed extractionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &scout.ExtractionError{URL: doc.URL, Err: fmt.Errorf("malformed response: %w", err)}
	}

	e.logger.Debug("collaborator call complete",
		zap.String("url", doc.URL),
		zap.Int("candidates", len(parsed.Candidates)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return parsed.Candidates, nil
}

var _ scout.Extractor = (*HTTPExtractor)(nil)
