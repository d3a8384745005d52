// Package serper implements the Serper search provider.
package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/webnav/navigator/internal/navigator"
)

const defaultEndpoint = "https://google.serper.dev/search"

// Client calls the Serper search API.
type Client struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// New builds a Client. An empty apiKey leaves the provider
// unconfigured.
func New(apiKey string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		apiKey:     apiKey,
		endpoint:   defaultEndpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// Name identifies the provider.
func (c *Client) Name() string { return "serper" }

// Configured reports whether an API key is present.
func (c *Client) Configured() bool { return c.apiKey != "" }

type searchRequest struct {
	Query string `json:"q"`
	Num   int    `json:"num"`
}

type searchResponse struct {
	Organic []json.RawMessage `json:"organic"`
}

type resultItem struct {
	Title     string `json:"title"`
	Snippet   string `json:"snippet"`
	Link      string `json:"link"`
	Published string `json:"published"`
}

// Search queries Serper and normalizes up to ten organic results.
func (c *Client) Search(ctx context.Context, query string) ([]navigator.SearchResult, error) {
	if !c.Configured() {
		c.logger.Debug("serper key not set, skipping")
		return nil, nil
	}

	body, err := json.Marshal(searchRequest{Query: query, Num: 10})
	if err != nil {
		return nil, fmt.Errorf("marshal serper request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build serper request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serper request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serper returned status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode serper response: %w", err)
	}

	organic := parsed.Organic
	if len(organic) > 10 {
		organic = organic[:10]
	}
	results := make([]navigator.SearchResult, 0, len(organic))
	for _, raw := range organic {
		var item resultItem
		if err := json.Unmarshal(raw, &item); err != nil {
			continue
		}
		results = append(results, navigator.SearchResult{
			Title:       item.Title,
			Snippet:     item.Snippet,
			URL:         item.Link,
			Source:      c.Name(),
			PublishedAt: item.Published,
			Raw:         raw,
		})
	}
	return results, nil
}
