package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/stealth"
)

const navigateTimeout = 30 * time.Second

// Tab wraps the Rod page showing the feed.
type Tab struct {
	Page    *rod.Page
	PageURL string
	logger  interface {
		Warn(msg string, args ...any)
	}
}

// OpenTab creates a stealth page on the managed browser and navigates to
// the feed URL.
func OpenTab(ctx context.Context, mgr *Manager, pageURL string) (*Tab, error) {
	b := mgr.Browser()
	if b == nil {
		return nil, fmt.Errorf("browser: not started")
	}

	page, err := stealth.Page(b)
	if err != nil {
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}

	navCtx, cancel := context.WithTimeout(ctx, navigateTimeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		page.Close()
		return nil, fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		mgr.logger.Warn("browser: wait load timeout", "url", pageURL, "error", err)
	}

	return &Tab{Page: page, PageURL: pageURL, logger: mgr.logger}, nil
}

// HTML serialises the page's current DOM as outer HTML. This is the input
// to every reconciliation scan.
func (t *Tab) HTML(ctx context.Context) ([]byte, error) {
	res, err := t.Page.Context(ctx).Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return nil, fmt.Errorf("browser: read DOM: %w", err)
	}
	return []byte(res.Value.Str()), nil
}

// Eval runs a script in the page. Used by the applier and composer.
func (t *Tab) Eval(ctx context.Context, js string) error {
	if _, err := t.Page.Context(ctx).Eval(js); err != nil {
		return fmt.Errorf("browser: eval: %w", err)
	}
	return nil
}

// EvalString runs a script and returns its string result.
func (t *Tab) EvalString(ctx context.Context, js string) (string, error) {
	res, err := t.Page.Context(ctx).Eval(js)
	if err != nil {
		return "", fmt.Errorf("browser: eval: %w", err)
	}
	return res.Value.Str(), nil
}

// Close closes the tab.
func (t *Tab) Close() error {
	if t.Page != nil {
		return t.Page.Close()
	}
	return nil
}
