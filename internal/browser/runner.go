package browser

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/webnav/navigator/internal/metrics"
	"github.com/webnav/navigator/internal/navigator"
)

// ErrSessionUnavailable wraps a session-acquisition failure. It is
// the only error RunSteps returns; step-level failures land in the
// trace instead.
var ErrSessionUnavailable = errors.New("browser session unavailable")

// ErrNoMatchingAnchor signals click_dynamic found no anchor whose
// destination contains the target domain.
var ErrNoMatchingAnchor = errors.New("no anchor matched target domain")

// defaultStepDelay paces consecutive steps.
const defaultStepDelay = 800 * time.Millisecond

// SessionFactory acquires the browser session for one run.
type SessionFactory func(ctx context.Context) (Session, error)

// Runner executes step sequences against a session. One session is
// acquired per RunSteps call and released on every exit path.
type Runner struct {
	factory   SessionFactory
	stepDelay time.Duration
	logger    *zap.Logger
}

// NewRunner builds a Runner. A non-positive stepDelay selects the
// default pacing.
func NewRunner(factory SessionFactory, stepDelay time.Duration, logger *zap.Logger) *Runner {
	if stepDelay <= 0 {
		stepDelay = defaultStepDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		factory:   factory,
		stepDelay: stepDelay,
		logger:    logger,
	}
}

// RunSteps processes steps strictly in input order, producing one
// trace entry per step. A failing step is recorded and execution
// continues; only session acquisition aborts the run.
func (r *Runner) RunSteps(ctx context.Context, steps []navigator.Step) ([]navigator.TraceEntry, error) {
	trace := make([]navigator.TraceEntry, 0, len(steps))

	sess, err := r.factory(ctx)
	if err != nil {
		return trace, fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
	}
	defer sess.Close()

	for _, step := range steps {
		entry := r.runStep(ctx, sess, step)
		trace = append(trace, entry)
		metrics.ObserveStep(step.Action, string(entry.Result))
		r.pause(ctx, step)
	}
	return trace, nil
}

func (r *Runner) runStep(ctx context.Context, sess Session, step navigator.Step) navigator.TraceEntry {
	ts := time.Now().UTC()
	entry := navigator.TraceEntry{
		Action:    step.Action,
		Timestamp: ts,
	}

	var (
		selector string
		err      error
	)
	switch step.Action {
	case navigator.ActionOpen:
		selector = step.URL
		err = sess.Navigate(ctx, step.URL)
	case navigator.ActionType:
		selector = step.Selector
		err = sess.Type(ctx, step.Selector, step.Text)
	case navigator.ActionPress:
		selector = keyName(step.Key)
		err = sess.Press(ctx, step.Key)
	case navigator.ActionClickDynamic:
		selector, err = r.clickDynamic(ctx, sess, step.URL)
	default:
		entry.Selector = ""
		entry.Result = navigator.StepUnknownAction
		return entry
	}

	entry.Selector = selector
	if err != nil {
		r.logger.Warn("step failed",
			zap.String("action", step.Action),
			zap.String("selector", selector),
			zap.Error(err),
		)
		entry.Result = navigator.StepFailure
		entry.Error = err.Error()
		if entry.Selector == "" {
			entry.Selector = fallbackSelector(step)
		}
		return entry
	}
	entry.Result = navigator.StepSuccess
	return entry
}

// clickDynamic scans the page's anchors in DOM order for the first
// one leading to the target's registrable domain, preferring decoded
// redirect-wrapper destinations over literal href matches. It returns
// the resolved target recorded in the trace.
func (r *Runner) clickDynamic(ctx context.Context, sess Session, targetURL string) (string, error) {
	domain, err := targetDomain(targetURL)
	if err != nil {
		return "", err
	}

	hrefs, err := sess.Anchors(ctx)
	if err != nil {
		return "", err
	}

	for i, href := range hrefs {
		if decoded := decodeRedirectParam(href); decoded != "" {
			if strings.Contains(decoded, domain) {
				if err := sess.ClickAnchor(ctx, i); err != nil {
					return decoded, err
				}
				return decoded, nil
			}
			continue
		}
		if strings.Contains(href, domain) {
			if err := sess.ClickAnchor(ctx, i); err != nil {
				return href, err
			}
			return href, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNoMatchingAnchor, domain)
}

// targetDomain computes the registrable domain of the target URL:
// the host with a leading "www." stripped.
func targetDomain(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse target url: %w", err)
	}
	domain := strings.TrimPrefix(u.Host, "www.")
	if domain == "" {
		return "", fmt.Errorf("target url %q has no host", rawURL)
	}
	return domain, nil
}

// decodeRedirectParam extracts the URL-encoded destination from a
// redirect-wrapper href carrying a uddg parameter. Non-wrapper hrefs
// yield "".
func decodeRedirectParam(href string) string {
	if !strings.Contains(href, "uddg=") {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	decoded := u.Query().Get("uddg")
	if decoded == "" {
		return ""
	}
	if unescaped, err := url.QueryUnescape(decoded); err == nil {
		decoded = unescaped
	}
	return decoded
}

func keyName(key string) string {
	if key == "" {
		return "ENTER"
	}
	return strings.ToUpper(key)
}

func fallbackSelector(step navigator.Step) string {
	if step.URL != "" {
		return step.URL
	}
	return step.Selector
}

// pause observes the post-step delay: the step's own sleep when set,
// the runner default otherwise.
func (r *Runner) pause(ctx context.Context, step navigator.Step) {
	delay := r.stepDelay
	if step.SleepSeconds > 0 {
		delay = time.Duration(step.SleepSeconds * float64(time.Second))
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
