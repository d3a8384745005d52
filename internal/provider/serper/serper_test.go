package serper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClient_Search_Success(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "secret", r.Header.Get("X-API-KEY"))

		var req searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "go testing", req.Query)
		require.Equal(t, 10, req.Num)

		_, _ = w.Write([]byte(`{
			"organic": [
				{"title": "Testing in Go", "snippet": "table driven tests", "link": "https://go.dev/doc/tutorial/add-a-test", "published": "2023-01-10"}
			]
		}`))
	}))
	defer server.Close()

	c := New("secret", nil)
	c.endpoint = server.URL

	results, err := c.Search(context.Background(), "go testing")
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "Testing in Go", results[0].Title)
	require.Equal(t, "https://go.dev/doc/tutorial/add-a-test", results[0].URL)
	require.Equal(t, "serper", results[0].Source)
	require.Equal(t, "2023-01-10", results[0].PublishedAt)
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
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	c := New("secret", nil)
	c.endpoint = server.URL

	_, err := c.Search(context.Background(), "q")
	require.Error(t, err)
}
