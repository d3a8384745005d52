package navigator

import (
	"context"
	"time"
)

// Provider is a web-search backend accessed through a uniform
// query/result contract. A provider without credentials reports
// Configured() == false and returns an empty result set from Search
// without touching the network.
type Provider interface {
	Name() string
	Configured() bool
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// Memory is the persistent store closing the feedback loop between
// runs: past query decisions and a frequency counter over domains.
type Memory interface {
	RememberQuery(query, url string) error
	RecallQuery(query string) (string, bool)
	ReinforceDomain(url string) error
	TrustedDomains() []string
}

// StepRunner executes an ordered step sequence against a browser
// session and returns the trace. A session-acquisition failure is the
// only error case; per-step failures are recorded in the trace.
type StepRunner interface {
	RunSteps(ctx context.Context, steps []Step) ([]TraceEntry, error)
}

// Verifier scores result credibility. Implementations never fail the
// job; they degrade to a heuristic verdict instead.
type Verifier interface {
	Verify(ctx context.Context, results []SearchResult) Verification
}

// JobStore persists completed job results for later retrieval.
type JobStore interface {
	RecordJob(ctx context.Context, result JobResult) error
	GetJob(ctx context.Context, jobID string) (JobResult, error)
}

// BlobStore writes raw artifacts and returns a URI.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, data []byte) (string, error)
}

// Publisher pushes completion events to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
