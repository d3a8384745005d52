// Package verify scores the credibility of search results, using the
// Gemini API when a key is configured and a local heuristic otherwise.
package verify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/webnav/navigator/internal/navigator"
)

const defaultAPIURL = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash:generateContent"

// maxEvaluated caps how many results a single verification considers.
const maxEvaluated = 8

// GeminiVerifier calls the Gemini generateContent endpoint with a
// heuristic fallback. Verification never fails the job: any API
// problem degrades to the heuristic path.
type GeminiVerifier struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
	logger     *zap.Logger
}

// New builds a GeminiVerifier. An empty apiKey selects the heuristic
// path outright; an empty apiURL selects the default endpoint.
func New(apiKey, apiURL string, logger *zap.Logger) *GeminiVerifier {
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeminiVerifier{
		apiKey:     apiKey,
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: 20 * time.Second},
		logger:     logger,
	}
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Verify scores the results. The Gemini summary is attached to
// neutral verdicts; any failure falls back to the heuristic.
func (v *GeminiVerifier) Verify(ctx context.Context, results []navigator.SearchResult) navigator.Verification {
	if v.apiKey == "" {
		v.logger.Debug("gemini key not set, using heuristic verifier")
		return Heuristic(results)
	}

	summary, err := v.generate(ctx, results)
	if err != nil {
		v.logger.Warn("gemini call failed, falling back to heuristic", zap.Error(err))
		return Heuristic(results)
	}

	verdicts := make([]navigator.ClaimVerdict, 0, min(len(results), maxEvaluated))
	for _, r := range results[:min(len(results), maxEvaluated)] {
		verdicts = append(verdicts, navigator.ClaimVerdict{
			URL:        r.URL,
			Verdict:    navigator.VerdictUnknown,
			Confidence: 0.5,
		})
	}
	return navigator.Verification{
		Verdicts:   verdicts,
		Confidence: 0.5,
		Summary:    summary,
	}
}

func (v *GeminiVerifier) generate(ctx context.Context, results []navigator.SearchResult) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: buildPrompt(results)}},
		}},
		GenerationConfig: generationConfig{
			Temperature:     0.2,
			MaxOutputTokens: 300,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal gemini request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", v.apiKey)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini returned status %d", resp.StatusCode)
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty gemini response")
	}
	text := strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", fmt.Errorf("empty gemini response")
	}
	return text, nil
}

func buildPrompt(results []navigator.SearchResult) string {
	var b strings.Builder
	b.WriteString("You are a fact-checking assistant.\n")
	b.WriteString("Evaluate the credibility and consensus of the following web search results.\n")
	b.WriteString("Provide a short summary of whether the information appears reliable.\n\n")
	for i, r := range results[:min(len(results), maxEvaluated)] {
		fmt.Fprintf(&b, "%d. Title: %s\n   URL: %s\n   Snippet: %s\n\n", i+1, r.Title, r.URL, r.Snippet)
	}
	return b.String()
}
