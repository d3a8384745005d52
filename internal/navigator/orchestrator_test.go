package navigator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	name       string
	configured bool
	results    []SearchResult
	err        error
	calls      int
}

func (p *fakeProvider) Name() string     { return p.name }
func (p *fakeProvider) Configured() bool { return p.configured }

func (p *fakeProvider) Search(_ context.Context, _ string) ([]SearchResult, error) {
	p.calls++
	return p.results, p.err
}

func fastRetry() *ExponentialRetryPolicy {
	return &ExponentialRetryPolicy{
		maxAttempts: 3,
		baseDelay:   time.Millisecond,
		maxDelay:    5 * time.Millisecond,
	}
}

func TestOrchestrator_RunSearch_PrimarySucceeds(t *testing.T) {
	t.Parallel()

	primary := &fakeProvider{
		name:       "alpha",
		configured: true,
		results:    []SearchResult{{Title: "t", URL: "https://example.com"}},
	}
	secondary := &fakeProvider{name: "beta", configured: true}

	o := NewOrchestrator([]Provider{primary, secondary}, fastRetry(), nil)
	results, used := o.RunSearch(context.Background(), "query")

	require.Equal(t, "alpha", used)
	require.Len(t, results, 1)
	require.Equal(t, 1, primary.calls)
	require.Zero(t, secondary.calls)
}

func TestOrchestrator_RunSearch_FallbackAfterExhaustion(t *testing.T) {
	t.Parallel()

	primary := &fakeProvider{
		name:       "alpha",
		configured: true,
		err:        errors.New("rate limited"),
	}
	fallback := &fakeProvider{
		name:       "beta",
		configured: true,
		results:    []SearchResult{{Title: "hit", URL: "https://example.org"}},
	}
	unconfigured := &fakeProvider{name: "gamma"}

	o := NewOrchestrator([]Provider{primary, unconfigured, fallback}, fastRetry(), nil)
	results, used := o.RunSearch(context.Background(), "query")

	require.Equal(t, "beta", used)
	require.Len(t, results, 1)
	require.Equal(t, 3, primary.calls)
	require.Equal(t, 1, fallback.calls)
	require.Zero(t, unconfigured.calls)
}

func TestOrchestrator_RunSearch_EmptyPrimaryIsRetried(t *testing.T) {
	t.Parallel()

	primary := &fakeProvider{name: "alpha", configured: true}
	fallback := &fakeProvider{
		name:       "beta",
		configured: true,
		results:    []SearchResult{{URL: "https://example.org"}},
	}

	o := NewOrchestrator([]Provider{primary, fallback}, fastRetry(), nil)
	results, used := o.RunSearch(context.Background(), "query")

	require.Equal(t, "beta", used)
	require.Len(t, results, 1)
	require.Equal(t, 3, primary.calls)
}

func TestOrchestrator_RunSearch_NoCredentialsUsesLastProvider(t *testing.T) {
	t.Parallel()

	keyed := &fakeProvider{name: "alpha"}
	free := &fakeProvider{
		name:       "duckduckgo",
		configured: false,
		results:    []SearchResult{{URL: "https://example.net"}},
	}

	o := NewOrchestrator([]Provider{keyed, free}, fastRetry(), nil)
	results, used := o.RunSearch(context.Background(), "query")

	require.Equal(t, "duckduckgo", used)
	require.Len(t, results, 1)
	require.Zero(t, keyed.calls)
}

func TestOrchestrator_RunSearch_AllEmptyIsValid(t *testing.T) {
	t.Parallel()

	primary := &fakeProvider{name: "alpha", configured: true}
	fallback := &fakeProvider{name: "beta", configured: true}

	o := NewOrchestrator([]Provider{primary, fallback}, fastRetry(), nil)
	results, used := o.RunSearch(context.Background(), "query")

	require.Empty(t, results)
	require.Equal(t, "alpha", used)
	require.Equal(t, 1, fallback.calls)
}

func TestOrchestrator_RunSearch_NoProviders(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(nil, fastRetry(), nil)
	results, used := o.RunSearch(context.Background(), "query")

	require.Empty(t, results)
	require.Empty(t, used)
}

func TestOrchestrator_RunSearch_CancelledContextStopsRetry(t *testing.T) {
	t.Parallel()

	primary := &fakeProvider{
		name:       "alpha",
		configured: true,
		err:        context.Canceled,
	}

	o := NewOrchestrator([]Provider{primary}, fastRetry(), nil)
	results, used := o.RunSearch(context.Background(), "query")

	require.Empty(t, results)
	require.Equal(t, "alpha", used)
	require.Equal(t, 1, primary.calls)
}
