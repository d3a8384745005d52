package navigator

import (
	"encoding/json"
	"time"
)

// SearchResult is the normalized record produced by every search
// provider. Immutable once constructed; URL is the de facto key
// within a batch.
type SearchResult struct {
	Title       string          `json:"title"`
	Snippet     string          `json:"snippet"`
	URL         string          `json:"url"`
	Source      string          `json:"source"`
	PublishedAt string          `json:"published_at,omitempty"`
	Raw         json.RawMessage `json:"raw,omitempty"`
}

// Step action names understood by the automation runner.
const (
	ActionOpen         = "open"
	ActionType         = "type"
	ActionPress        = "press"
	ActionClickDynamic = "click_dynamic"
)

// Step is one browser action supplied by the caller. The payload
// fields are action-dependent; SleepSeconds overrides the default
// post-step delay.
type Step struct {
	Action       string  `json:"action"`
	URL          string  `json:"url,omitempty"`
	Selector     string  `json:"selector,omitempty"`
	Text         string  `json:"text,omitempty"`
	Key          string  `json:"key,omitempty"`
	SleepSeconds float64 `json:"sleep,omitempty"`
}

// StepOutcome classifies the result of one executed step.
type StepOutcome string

// Step outcomes recorded in the trace.
const (
	StepSuccess       StepOutcome = "success"
	StepFailure       StepOutcome = "failure"
	StepUnknownAction StepOutcome = "unknown-action"
)

// TraceEntry records the outcome of one step. Exactly one entry is
// produced per input step, in input order. Selector holds the
// resolved target: a URL, CSS selector, key name or decoded redirect
// destination.
type TraceEntry struct {
	Action    string      `json:"action"`
	Selector  string      `json:"selector"`
	Timestamp time.Time   `json:"timestamp"`
	Result    StepOutcome `json:"result"`
	Error     string      `json:"error,omitempty"`
}

// Verdict is the credibility classification of a single result.
type Verdict string

// Verdict values produced by the verification gateway.
const (
	VerdictLikelyTrue Verdict = "likely-true"
	VerdictUncertain  Verdict = "uncertain"
	VerdictUnknown    Verdict = "unknown"
)

// ClaimVerdict scores one result URL.
type ClaimVerdict struct {
	URL        string  `json:"url"`
	Verdict    Verdict `json:"verdict"`
	Confidence float64 `json:"confidence"`
}

// Verification aggregates per-result verdicts with an overall
// confidence and a human-readable summary.
type Verification struct {
	Verdicts   []ClaimVerdict `json:"verdicts"`
	Confidence float64        `json:"confidence"`
	Summary    string         `json:"summary"`
}

// JobResult is the aggregate output of one end-to-end run.
type JobResult struct {
	JobID        string         `json:"job_id"`
	Query        string         `json:"query"`
	ProviderUsed string         `json:"provider_used"`
	Results      []SearchResult `json:"results"`
	Trace        []TraceEntry   `json:"trace"`
	Verification Verification   `json:"verification"`
	Timestamp    time.Time      `json:"timestamp"`
}
