package verify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/webnav/navigator/internal/navigator"
)

func TestGeminiVerifier_NoKeyUsesHeuristic(t *testing.T) {
	t.Parallel()

	v := New("", "", nil)
	verification := v.Verify(context.Background(), []navigator.SearchResult{
		{URL: "https://en.wikipedia.org/wiki/Go"},
	})

	require.Contains(t, verification.Summary, "Local heuristic")
	require.Equal(t, navigator.VerdictLikelyTrue, verification.Verdicts[0].Verdict)
}

func TestGeminiVerifier_SuccessfulCall(t *testing.T) {
	t.Parallel()

	var gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-goog-api-key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [{"content": {"parts": [{"text": "The sources look consistent."}]}}]
		}`))
	}))
	defer server.Close()

	v := New("test-key", server.URL, nil)
	verification := v.Verify(context.Background(), []navigator.SearchResult{
		{Title: "a", URL: "https://a.example.com"},
		{Title: "b", URL: "https://b.example.com"},
	})

	require.Equal(t, "test-key", gotKey)
	require.Equal(t, "The sources look consistent.", verification.Summary)
	require.Equal(t, 0.5, verification.Confidence)
	require.Len(t, verification.Verdicts, 2)
	for _, verdict := range verification.Verdicts {
		require.Equal(t, navigator.VerdictUnknown, verdict.Verdict)
		require.Equal(t, 0.5, verdict.Confidence)
	}
}

func TestGeminiVerifier_ServerErrorFallsBackToHeuristic(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	v := New("test-key", server.URL, nil)
	verification := v.Verify(context.Background(), []navigator.SearchResult{
		{URL: "https://random.example.com"},
	})

	require.Contains(t, verification.Summary, "Local heuristic")
	require.Equal(t, 0.45, verification.Confidence)
}

func TestGeminiVerifier_EmptyCandidatesFallsBackToHeuristic(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates": []}`))
	}))
	defer server.Close()

	v := New("test-key", server.URL, nil)
	verification := v.Verify(context.Background(), []navigator.SearchResult{
		{URL: "https://random.example.com"},
	})

	require.Contains(t, verification.Summary, "Local heuristic")
}

func TestGeminiVerifier_VerdictsCappedAtEight(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": "ok"}]}}]}`))
	}))
	defer server.Close()

	results := make([]navigator.SearchResult, 10)
	for i := range results {
		results[i] = navigator.SearchResult{URL: "https://example.com"}
	}

	v := New("test-key", server.URL, nil)
	verification := v.Verify(context.Background(), results)
	require.Len(t, verification.Verdicts, 8)
}
