package verify

import (
	"fmt"
	"math"
	"strings"

	"github.com/webnav/navigator/internal/navigator"
)

// highTrustFragments flag well-established sources.
var highTrustFragments = []string{
	"wikipedia.org",
	".gov",
	".edu",
	"bbc.co",
	"nytimes.com",
}

// Heuristic is the no-credential credibility scorer: high-trust
// domains verdict likely-true at 0.85, everything else uncertain at
// 0.45, aggregate confidence the mean over at most the first eight
// results (0.0 when there are none).
func Heuristic(results []navigator.SearchResult) navigator.Verification {
	evaluated := results
	if len(evaluated) > maxEvaluated {
		evaluated = evaluated[:maxEvaluated]
	}

	verdicts := make([]navigator.ClaimVerdict, 0, len(evaluated))
	var total float64
	for _, r := range evaluated {
		verdict, confidence := navigator.VerdictUncertain, 0.45
		if containsAny(r.URL, highTrustFragments) {
			verdict, confidence = navigator.VerdictLikelyTrue, 0.85
		}
		verdicts = append(verdicts, navigator.ClaimVerdict{
			URL:        r.URL,
			Verdict:    verdict,
			Confidence: confidence,
		})
		total += confidence
	}

	var overall float64
	if len(verdicts) > 0 {
		overall = round2(total / float64(len(verdicts)))
	}

	return navigator.Verification{
		Verdicts:   verdicts,
		Confidence: overall,
		Summary: fmt.Sprintf(
			"Local heuristic: evaluated %d results. Mostly uncertain without external verification.",
			len(verdicts),
		),
	}
}

func containsAny(s string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
