// Package serpapi implements the SerpAPI search provider.
package serpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/webnav/navigator/internal/navigator"
)

const defaultEndpoint = "https://serpapi.com/search.json"

// Client calls the SerpAPI Google search endpoint.
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
func (c *Client) Name() string { return "serpapi" }

// Configured reports whether an API key is present.
func (c *Client) Configured() bool { return c.apiKey != "" }

type searchResponse struct {
	OrganicResults []json.RawMessage `json:"organic_results"`
}

type resultItem struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
	Date    string `json:"date"`
}

// Search queries SerpAPI and normalizes up to ten organic results.
func (c *Client) Search(ctx context.Context, query string) ([]navigator.SearchResult, error) {
	if !c.Configured() {
		c.logger.Debug("serpapi key not set, skipping")
		return nil, nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("api_key", c.apiKey)
	params.Set("num", "10")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build serpapi request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serpapi request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serpapi returned status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode serpapi response: %w", err)
	}

	organic := parsed.OrganicResults
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
			PublishedAt: item.Date,
			Raw:         raw,
		})
	}
	return results, nil
}
