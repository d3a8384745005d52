package duckduckgo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

const resultPage = `<!DOCTYPE html>
<html><body>
<div class="result">
  <a class="result__a" href="/l/?uddg=https%3A%2F%2Fgo.dev%2Ftour%2Fconcurrency">A Tour of Go</a>
  <a class="result__snippet" href="#">Channels are typed conduits.</a>
</div>
<div class="result">
  <a class="result__a" href="https://gobyexample.com/channels">Go by Example: Channels</a>
  <a class="result__snippet" href="#">Use channels to communicate.</a>
</div>
<div class="result">
  <a class="result__a" href="https://gobyexample.com/channels">Duplicate entry</a>
</div>
<div class="result">
  <a class="result__a" href="/l/?uddg=https%3A%2F%2Fexample.com">  </a>
</div>
</body></html>`

func TestClient_Search_ScrapesAndResolvesRedirects(t *testing.T) {
	t.Parallel()

	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(resultPage))
	}))
	defer server.Close()

	c := New("test-agent", nil)
	c.baseURL = server.URL

	results, err := c.Search(context.Background(), "go channels")
	require.NoError(t, err)
	require.Equal(t, "go channels", gotQuery)

	// Redirect links are unwrapped, duplicates and titleless entries
	// are dropped.
	require.Len(t, results, 2)
	require.Equal(t, "A Tour of Go", results[0].Title)
	require.Equal(t, "https://go.dev/tour/concurrency", results[0].URL)
	require.Equal(t, "Channels are typed conduits.", results[0].Snippet)
	require.Equal(t, "duckduckgo", results[0].Source)
	require.Equal(t, "https://gobyexample.com/channels", results[1].URL)
}

func TestClient_Search_AlwaysConfigured(t *testing.T) {
	t.Parallel()

	c := New("", nil)
	require.True(t, c.Configured())
	require.Equal(t, "duckduckgo", c.Name())
}

func TestClient_Search_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New("test-agent", nil)
	_, err := c.Search(ctx, "q")
	require.Error(t, err)
}

func TestResolveRedirect(t *testing.T) {
	t.Parallel()

	require.Equal(t, "https://plain.example.com", ResolveRedirect("https://plain.example.com"))
	require.Empty(t, ResolveRedirect(""))
	require.Empty(t, ResolveRedirect("/l/?uddg="))

	wrapped := "/l/?uddg=" + url.QueryEscape("https://go.dev/tour")
	require.Equal(t, "https://go.dev/tour", ResolveRedirect(wrapped))
}
