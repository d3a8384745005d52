package navigator

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/webnav/navigator/internal/metrics"
)

// ErrNoResults signals that a provider call completed but produced an
// empty result set. During the primary retry phase this is treated as
// a transient failure, not a valid outcome.
var ErrNoResults = errors.New("provider returned no results")

// Orchestrator selects a search provider, calls it with bounded
// retry/backoff, and falls back across the remaining providers on
// empty or failed results.
type Orchestrator struct {
	providers []Provider
	retry     *ExponentialRetryPolicy
	logger    *zap.Logger
}

// NewOrchestrator builds an Orchestrator over providers listed in
// descending priority order.
func NewOrchestrator(providers []Provider, retry *ExponentialRetryPolicy, logger *zap.Logger) *Orchestrator {
	if retry == nil {
		retry = NewExponentialRetryPolicy()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		providers: providers,
		retry:     retry,
		logger:    logger,
	}
}

// RunSearch resolves the primary provider, calls it with retry, and
// on exhaustion scans the remaining configured providers once each.
// An empty result set is a valid terminal outcome, never an error.
func (o *Orchestrator) RunSearch(ctx context.Context, query string) ([]SearchResult, string) {
	primary := o.primary()
	if primary == nil {
		return nil, ""
	}

	results, err := o.searchWithRetry(ctx, primary, query)
	if err != nil {
		o.logger.Warn("primary search exhausted",
			zap.String("provider", primary.Name()),
			zap.String("query", query),
			zap.Error(err),
		)
		metrics.ObserveSearch(primary.Name(), "exhausted")
		results = nil
	}
	if len(results) > 0 {
		metrics.ObserveSearch(primary.Name(), "ok")
		return results, primary.Name()
	}

	for _, cand := range o.providers {
		if cand == primary || !cand.Configured() {
			continue
		}
		metrics.ObserveFallback(cand.Name())
		fallback, err := cand.Search(ctx, query)
		if err != nil {
			o.logger.Debug("fallback provider failed",
				zap.String("provider", cand.Name()),
				zap.Error(err),
			)
			metrics.ObserveSearch(cand.Name(), "error")
			continue
		}
		if len(fallback) > 0 {
			metrics.ObserveSearch(cand.Name(), "ok")
			return fallback, cand.Name()
		}
		metrics.ObserveSearch(cand.Name(), "empty")
	}

	return nil, primary.Name()
}

// primary returns the highest-priority configured provider, or the
// lowest-priority provider as the free-tier default when none carry
// credentials.
func (o *Orchestrator) primary() Provider {
	for _, p := range o.providers {
		if p.Configured() {
			return p
		}
	}
	if len(o.providers) == 0 {
		return nil
	}
	return o.providers[len(o.providers)-1]
}

func (o *Orchestrator) searchWithRetry(ctx context.Context, p Provider, query string) ([]SearchResult, error) {
	var lastErr error
	for attempt := 1; attempt <= o.retry.MaxAttempts(); attempt++ {
		if attempt > 1 {
			if err := sleepContext(ctx, o.retry.Backoff(attempt-1)); err != nil {
				return nil, err
			}
		}
		results, err := p.Search(ctx, query)
		if err == nil && len(results) == 0 {
			err = ErrNoResults
		}
		if err == nil {
			return results, nil
		}
		lastErr = err
		o.logger.Debug("search attempt failed",
			zap.String("provider", p.Name()),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if !o.retry.ShouldRetry(err, attempt) {
			break
		}
	}
	return nil, fmt.Errorf("search %s: %w", p.Name(), lastErr)
}
