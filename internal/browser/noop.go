package browser

import "context"

// NoopSession satisfies Session without driving anything. It backs
// configurations with automation disabled and keeps the runner
// testable without Chrome.
type NoopSession struct{}

// Navigate does nothing and reports success.
func (NoopSession) Navigate(context.Context, string) error { return nil }

// Type does nothing and reports success.
func (NoopSession) Type(context.Context, string, string) error { return nil }

// Press does nothing and reports success.
func (NoopSession) Press(context.Context, string) error { return nil }

// Anchors reports an empty page.
func (NoopSession) Anchors(context.Context) ([]string, error) { return nil, nil }

// ClickAnchor does nothing and reports success.
func (NoopSession) ClickAnchor(context.Context, int) error { return nil }

// Close does nothing.
func (NoopSession) Close() {}
