// Package browser drives a Chrome session through scripted steps via
// chromedp, producing an ordered trace of outcomes.
package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"go.uber.org/zap"
)

// Session is the driven browser surface the runner executes against.
// Exactly one session is owned per run; Close releases it.
type Session interface {
	Navigate(ctx context.Context, url string) error
	Type(ctx context.Context, selector, text string) error
	Press(ctx context.Context, key string) error
	Anchors(ctx context.Context) ([]string, error)
	ClickAnchor(ctx context.Context, index int) error
	Close()
}

// Config selects the session mode and its knobs. A non-empty
// DebuggerAddress attaches to a running Chrome; otherwise a fresh
// process is launched.
type Config struct {
	Headless        bool
	UserDataDir     string
	DebuggerAddress string
	UserAgent       string
	ActionTimeout   time.Duration
}

// chromedpSession implements Session over a chromedp browser context.
type chromedpSession struct {
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
	timeout       time.Duration
	logger        *zap.Logger
}

// NewSession acquires a browser session in launch or attach mode and
// verifies the browser is reachable.
func NewSession(cfg Config, logger *zap.Logger) (Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.ActionTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	var (
		allocCtx    context.Context
		allocCancel context.CancelFunc
	)
	if cfg.DebuggerAddress != "" {
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(
			context.Background(),
			fmt.Sprintf("http://%s", cfg.DebuggerAddress),
		)
	} else {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", cfg.Headless),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)
		if cfg.UserDataDir != "" {
			opts = append(opts, chromedp.UserDataDir(cfg.UserDataDir))
		}
		if cfg.UserAgent != "" {
			opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
		}
		allocCtx, allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	}

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("chromedp warmup: %w", err)
	}

	return &chromedpSession{
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
		timeout:       timeout,
		logger:        logger,
	}, nil
}

// Close releases the browser contexts. When attached to an external
// Chrome this detaches without closing the user's browser.
func (s *chromedpSession) Close() {
	s.browserCancel()
	s.allocCancel()
}

func (s *chromedpSession) run(actions ...chromedp.Action) error {
	taskCtx, cancel := context.WithTimeout(s.browserCtx, s.timeout)
	defer cancel()
	return chromedp.Run(taskCtx, actions...)
}

// Navigate issues navigation; success does not wait for a full load.
func (s *chromedpSession) Navigate(_ context.Context, url string) error {
	if err := s.run(chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

// Type locates a single element by CSS selector, clears it and sends
// literal text. A missing element fails via the action timeout.
func (s *chromedpSession) Type(_ context.Context, selector, text string) error {
	err := s.run(
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, text, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("type into %q: %w", selector, err)
	}
	return nil
}

// keyNames maps case-insensitive key names to chromedp key codes.
var keyNames = map[string]string{
	"ENTER":     kb.Enter,
	"TAB":       kb.Tab,
	"ESCAPE":    kb.Escape,
	"BACKSPACE": kb.Backspace,
	"DELETE":    kb.Delete,
	"UP":        kb.ArrowUp,
	"DOWN":      kb.ArrowDown,
	"LEFT":      kb.ArrowLeft,
	"RIGHT":     kb.ArrowRight,
	"PAGEUP":    kb.PageUp,
	"PAGEDOWN":  kb.PageDown,
	"HOME":      kb.Home,
	"END":       kb.End,
	"SPACE":     " ",
}

// ResolveKey maps a key name to the code dispatched to the page.
// Unknown or empty names default to Enter.
func ResolveKey(name string) string {
	if code, ok := keyNames[strings.ToUpper(name)]; ok {
		return code
	}
	return kb.Enter
}

// Press dispatches a named key to the document body.
func (s *chromedpSession) Press(_ context.Context, key string) error {
	if err := s.run(chromedp.SendKeys("body", ResolveKey(key), chromedp.ByQuery)); err != nil {
		return fmt.Errorf("press %q: %w", key, err)
	}
	return nil
}

// Anchors returns the href of every anchor on the page in DOM order.
func (s *chromedpSession) Anchors(_ context.Context) ([]string, error) {
	var hrefs []string
	err := s.run(chromedp.Evaluate(
		`Array.from(document.querySelectorAll('a[href]')).map(a => a.href)`,
		&hrefs,
	))
	if err != nil {
		return nil, fmt.Errorf("collect anchors: %w", err)
	}
	return hrefs, nil
}

// ClickAnchor scrolls the index-th anchor into view, pauses briefly
// and clicks it, falling back to a programmatic click when the direct
// click is intercepted.
func (s *chromedpSession) ClickAnchor(_ context.Context, index int) error {
	var nodes []*cdp.Node
	if err := s.run(chromedp.Nodes(`a[href]`, &nodes, chromedp.ByQueryAll)); err != nil {
		return fmt.Errorf("locate anchors: %w", err)
	}
	if index < 0 || index >= len(nodes) {
		return fmt.Errorf("anchor index %d out of range (%d anchors)", index, len(nodes))
	}

	scroll := fmt.Sprintf(
		`document.querySelectorAll('a[href]')[%d].scrollIntoView({block: 'center'})`,
		index,
	)
	if err := s.run(chromedp.Evaluate(scroll, nil), chromedp.Sleep(400*time.Millisecond)); err != nil {
		return fmt.Errorf("scroll to anchor: %w", err)
	}

	if err := s.run(chromedp.MouseClickNode(nodes[index])); err != nil {
		s.logger.Debug("direct click intercepted, using programmatic click", zap.Error(err))
		forced := fmt.Sprintf(`document.querySelectorAll('a[href]')[%d].click()`, index)
		if err := s.run(chromedp.Evaluate(forced, nil)); err != nil {
			return fmt.Errorf("click anchor %d: %w", index, err)
		}
	}
	return nil
}
