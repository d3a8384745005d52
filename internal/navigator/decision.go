package navigator

import (
	"strings"

	"go.uber.org/zap"
)

// trustedFragments is the static allow-list used as a secondary
// ranking signal: documentation hosts, well-known tutorial sites and
// code-hosting domains.
var trustedFragments = []string{
	"docs",
	"readthedocs",
	"tutorial",
	"learn",
	"selenium",
	"python",
	"github.com",
	"geeksforgeeks",
	"w3schools",
	"realpython",
}

// DecisionEngine selects exactly one URL from a result batch via a
// fixed priority cascade backed by persistent memory. It is a pure
// reader: writing decisions back into memory is the caller's
// responsibility.
type DecisionEngine struct {
	memory Memory
	logger *zap.Logger
}

// NewDecisionEngine builds a DecisionEngine over the given memory.
func NewDecisionEngine(memory Memory, logger *zap.Logger) *DecisionEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DecisionEngine{memory: memory, logger: logger}
}

// SelectURL evaluates the cascade in order, first match wins:
// memory hit, keyword match, trusted-fragment match, first result.
// Empty results yield ("", false).
//
// An empty query tokenizes to nothing, so the keyword stage never
// matches and the cascade falls through. That mirrors the observed
// behavior of the original policy and is intentional.
func (e *DecisionEngine) SelectURL(results []SearchResult, query string) (string, bool) {
	if len(results) == 0 {
		return "", false
	}

	if remembered, ok := e.memory.RecallQuery(query); ok {
		e.logger.Info("memory hit",
			zap.String("query", query),
			zap.String("url", remembered),
		)
		return remembered, true
	}

	keywords := strings.Fields(strings.ToLower(query))
	for _, r := range results {
		haystack := strings.ToLower(r.Title + " " + r.URL)
		for _, k := range keywords {
			if strings.Contains(haystack, k) {
				e.logger.Info("selected by keyword match", zap.String("url", r.URL))
				return r.URL, true
			}
		}
	}

	for _, r := range results {
		lowered := strings.ToLower(r.URL)
		for _, fragment := range trustedFragments {
			if strings.Contains(lowered, fragment) {
				e.logger.Info("selected by trusted fragment", zap.String("url", r.URL))
				return r.URL, true
			}
		}
	}

	e.logger.Info("fallback to first result", zap.String("url", results[0].URL))
	return results[0].URL, true
}
