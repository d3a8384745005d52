// Package tavily implements the Tavily search provider.
package tavily

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

const defaultEndpoint = "https://api.tavily.com/search"

// Client calls the Tavily search API.
type Client struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// New builds a Client. An empty apiKey leaves the provider
// unconfigured; Search then returns no results without any network
// call.
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
func (c *Client) Name() string { return "tavily" }

// Configured reports whether an API key is present.
func (c *Client) Configured() bool { return c.apiKey != "" }

type searchRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth"`
	MaxResults  int    `json:"max_results"`
}

type searchResponse struct {
	Results []json.RawMessage `json:"results"`
}

type resultItem struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	URL     string `json:"url"`
}

// Search queries Tavily and normalizes the organic results.
func (c *Client) Search(ctx context.Context, query string) ([]navigator.SearchResult, error) {
	if !c.Configured() {
		c.logger.Debug("tavily key not set, skipping")
		return nil, nil
	}

	body, err := json.Marshal(searchRequest{
		APIKey:      c.apiKey,
		Query:       query,
		SearchDepth: "basic",
		MaxResults:  5,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal tavily request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build tavily request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily returned status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode tavily response: %w", err)
	}

	results := make([]navigator.SearchResult, 0, len(parsed.Results))
	for _, raw := range parsed.Results {
		var item resultItem
		if err := json.Unmarshal(raw, &item); err != nil {
			continue
		}
		results = append(results, navigator.SearchResult{
			Title:   item.Title,
			Snippet: item.Content,
			URL:     item.URL,
			Source:  c.Name(),
			Raw:     raw,
		})
	}
	return results, nil
}
