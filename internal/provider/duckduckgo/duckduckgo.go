// Package duckduckgo implements a keyless search provider scraping
// the DuckDuckGo HTML endpoint. It backs the free-tier default when
// no API-based provider carries credentials.
package duckduckgo

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/webnav/navigator/internal/navigator"
)

const defaultBaseURL = "https://html.duckduckgo.com"

// Client scrapes DuckDuckGo search result pages.
type Client struct {
	baseURL       string
	userAgent     string
	timeout       time.Duration
	baseCollector *colly.Collector
	logger        *zap.Logger
}

// New builds a Client. DuckDuckGo needs no credentials, so the
// provider is always configured.
func New(userAgent string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if userAgent == "" {
		userAgent = "navigator-bot/0.1"
	}
	return &Client{
		baseURL:       defaultBaseURL,
		userAgent:     userAgent,
		timeout:       15 * time.Second,
		baseCollector: colly.NewCollector(colly.Async(false)),
		logger:        logger,
	}
}

// Name identifies the provider.
func (c *Client) Name() string { return "duckduckgo" }

// Configured always reports true: the HTML endpoint is keyless.
func (c *Client) Configured() bool { return true }

// Search scrapes one result page and normalizes the entries,
// resolving redirect-wrapped links to their real destination.
func (c *Client) Search(ctx context.Context, query string) ([]navigator.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	collector := c.baseCollector.Clone()
	collector.UserAgent = c.userAgent
	collector.IgnoreRobotsTxt = true
	collector.SetRequestTimeout(c.timeout)

	var (
		results  []navigator.SearchResult
		scanErr  error
		seenURLs = make(map[string]struct{})
	)

	collector.OnHTML("div.result", func(e *colly.HTMLElement) {
		title := strings.TrimSpace(e.ChildText("a.result__a"))
		href := e.ChildAttr("a.result__a", "href")
		snippet := strings.TrimSpace(e.ChildText("a.result__snippet"))

		resolved := ResolveRedirect(href)
		if resolved == "" || title == "" {
			return
		}
		if _, dup := seenURLs[resolved]; dup {
			return
		}
		seenURLs[resolved] = struct{}{}

		results = append(results, navigator.SearchResult{
			Title:   title,
			Snippet: snippet,
			URL:     resolved,
			Source:  c.Name(),
		})
	})

	collector.OnError(func(_ *colly.Response, err error) {
		scanErr = err
	})

	target := fmt.Sprintf("%s/html/?q=%s", c.baseURL, url.QueryEscape(query))
	if err := collector.Visit(target); err != nil {
		return nil, fmt.Errorf("duckduckgo visit: %w", err)
	}
	collector.Wait()

	if scanErr != nil {
		return nil, fmt.Errorf("duckduckgo fetch: %w", scanErr)
	}
	return results, nil
}

// ResolveRedirect unwraps DuckDuckGo's /l/?uddg= redirect links,
// returning the decoded destination. Plain links pass through
// unchanged; an unusable href yields "".
func ResolveRedirect(href string) string {
	if href == "" {
		return ""
	}
	if !strings.Contains(href, "uddg=") {
		return href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	decoded := u.Query().Get("uddg")
	if decoded == "" {
		return ""
	}
	if unescaped, err := url.QueryUnescape(decoded); err == nil {
		decoded = unescaped
	}
	return decoded
}
