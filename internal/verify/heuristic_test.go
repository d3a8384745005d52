package verify

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/webnav/navigator/internal/navigator"
)

func TestHeuristic_HighTrustDomains(t *testing.T) {
	t.Parallel()

	v := Heuristic([]navigator.SearchResult{
		{URL: "https://en.wikipedia.org/wiki/Go"},
		{URL: "https://www.nasa.gov/missions"},
		{URL: "https://cs.stanford.edu/people"},
	})

	require.Len(t, v.Verdicts, 3)
	for _, verdict := range v.Verdicts {
		require.Equal(t, navigator.VerdictLikelyTrue, verdict.Verdict)
		require.Equal(t, 0.85, verdict.Confidence)
	}
	require.Equal(t, 0.85, v.Confidence)
}

func TestHeuristic_UnknownDomainsAreUncertain(t *testing.T) {
	t.Parallel()

	v := Heuristic([]navigator.SearchResult{
		{URL: "https://random.example.com/post"},
	})

	require.Len(t, v.Verdicts, 1)
	require.Equal(t, navigator.VerdictUncertain, v.Verdicts[0].Verdict)
	require.Equal(t, 0.45, v.Verdicts[0].Confidence)
	require.Equal(t, 0.45, v.Confidence)
}

func TestHeuristic_MixedResultsAverage(t *testing.T) {
	t.Parallel()

	v := Heuristic([]navigator.SearchResult{
		{URL: "https://en.wikipedia.org/wiki/Go"},
		{URL: "https://random.example.com/post"},
	})

	require.Equal(t, 0.65, v.Confidence)
}

func TestHeuristic_CapsAtEightResults(t *testing.T) {
	t.Parallel()

	results := make([]navigator.SearchResult, 0, 12)
	for i := 0; i < 12; i++ {
		results = append(results, navigator.SearchResult{
			URL: fmt.Sprintf("https://site%d.example.com", i),
		})
	}

	v := Heuristic(results)
	require.Len(t, v.Verdicts, 8)
	require.Contains(t, v.Summary, "8 results")
}

func TestHeuristic_EmptyResults(t *testing.T) {
	t.Parallel()

	v := Heuristic(nil)
	require.Empty(t, v.Verdicts)
	require.Zero(t, v.Confidence)
	require.NotEmpty(t, v.Summary)
}
