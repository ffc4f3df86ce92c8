// Package browser drives the live feed page over CDP: it owns the Chrome
// connection, injects the mutation signal source, executes reconciliation
// plans, renders the drafting panel, and operates the host page's own
// comment composer.
package browser

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// Config configures the Chrome connection.
type Config struct {
	// RemoteURL is the WebSocket URL of an already-running Chrome. Empty
	// means launch a local one.
	RemoteURL string

	// Headless launches without a window. The augmentation targets a page
	// the user is looking at, so the default is a visible browser.
	Headless bool

	// UserDataDir keeps the session (cookies, login) across restarts.
	UserDataDir string

	Logger *slog.Logger
}

// Manager owns the Chrome process and the Rod handle. Unlike a scraping
// fleet there is exactly one browser and one page of interest; the manager's
// job is connecting, not recycling.
type Manager struct {
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
}

// NewManager creates a Manager. Call Start to connect.
func NewManager(cfg Config) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{cfg: cfg, logger: logger}
}

// Start launches or connects to Chrome and returns the Rod handle.
func (m *Manager) Start() (*rod.Browser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	wsURL := m.cfg.RemoteURL
	if wsURL == "" {
		l := launcher.New().
			Headless(m.cfg.Headless).
			Set("disable-blink-features", "AutomationControlled")
		if m.cfg.UserDataDir != "" {
			l = l.UserDataDir(m.cfg.UserDataDir)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("browser: launch: %w", err)
		}
		m.lnch = l
		wsURL = u
		m.logger.Info("browser: launched chrome", "headless", m.cfg.Headless)
	} else {
		m.logger.Info("browser: connecting to remote chrome", "url", wsURL)
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	m.browser = b
	return b, nil
}

// Browser returns the current handle, nil before Start.
func (m *Manager) Browser() *rod.Browser {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.browser
}

// Close shuts Chrome down (local launches only; remote browsers are left
// running).
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.browser != nil {
		m.browser.Close()
		m.browser = nil
	}
	if m.lnch != nil {
		m.lnch.Cleanup()
		m.lnch = nil
	}
	return nil
}
