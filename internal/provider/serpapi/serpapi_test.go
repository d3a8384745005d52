package serpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClient_Search_Success(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		q := r.URL.Query()
		require.Equal(t, "go generics", q.Get("q"))
		require.Equal(t, "secret", q.Get("api_key"))
		require.Equal(t, "10", q.Get("num"))

		_, _ = w.Write([]byte(`{
			"organic_results": [
				{"title": "Go Generics", "snippet": "type parameters", "link": "https://go.dev/blog/intro-generics", "date": "2022-03-22"}
			]
		}`))
	}))
	defer server.Close()

	c := New("secret", nil)
	c.endpoint = server.URL

	results, err := c.Search(context.Background(), "go generics")
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "Go Generics", results[0].Title)
	require.Equal(t, "https://go.dev/blog/intro-generics", results[0].URL)
	require.Equal(t, "serpapi", results[0].Source)
	require.Equal(t, "2022-03-22", results[0].PublishedAt)
}

func TestClient_Search_CapsAtTenResults(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		items := make([]string, 0, 15)
		for i := 0; i < 15; i++ {
			items = append(items, fmt.Sprintf(`{"title": "r%d", "link": "https://example.com/%d"}`, i, i))
		}
		_, _ = fmt.Fprintf(w, `{"organic_results": [%s]}`, strings.Join(items, ","))
	}))
	defer server.Close()

	c := New("secret", nil)
	c.endpoint = server.URL

	results, err := c.Search(context.Background(), "q")
	require.NoError(t, err)
	require.Len(t, results, 10)
}

func TestClient_Search_NoKeySkipsNetwork(t *testing.T) {
	t.Parallel()

	c := New("", nil)
	require.False(t, c.Configured())

	results, err := c.Search(context.Background(), "q")
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestClient_Search_NonOKStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c := New("secret", nil)
	c.endpoint = server.URL

	_, err := c.Search(context.Background(), "q")
	require.Error(t, err)
}
