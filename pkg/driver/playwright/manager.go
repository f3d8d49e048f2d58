package playwright

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	pw "github.com/playwright-community/playwright-go"

	"github.com/entrhq/smartfind/pkg/driver"
	"github.com/entrhq/smartfind/pkg/logging"
)

// SessionManager owns the Playwright runtime and every session launched from
// it. Each session is an isolated browser with one page, meant to be owned by
// a single worker.
type SessionManager struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	runtime     *pw.Playwright
	maxSessions int
	initialized bool
	logger      *logging.Logger
}

// NewSessionManager creates a new session manager.
func NewSessionManager(logger *logging.Logger) *SessionManager {
	if logger == nil {
		logger = logging.Discard("playwright")
	}
	return &SessionManager{
		sessions:    make(map[string]*Session),
		maxSessions: DefaultMaxSessions,
		logger:      logger,
	}
}

// Initialize installs the driver and the given browsers if needed, then
// starts Playwright. It must be called before creating any sessions.
func (m *SessionManager) Initialize(browsers ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	names := make([]string, 0, len(browsers))
	for _, b := range browsers {
		name, err := NormalizeBrowser(b)
		if err != nil {
			return err
		}
		names = append(names, name)
	}

	// Keep installer output off the console
	opts := &pw.RunOptions{
		Browsers: names,
		Verbose:  false,
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	}

	if err := pw.Install(opts); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}

	runtime, err := pw.Run(opts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	m.runtime = runtime
	m.initialized = true
	m.logger.Infof("playwright started")
	return nil
}

// StartSession launches a browser with the given options and opens one
// page. When opts.BaseURL is set the page navigates there before the session
// is returned.
func (m *SessionManager) StartSession(ctx context.Context, name string, opts SessionOptions) (*Session, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	session, err := m.launch(name, opts)
	if err != nil {
		return nil, err
	}

	if opts.BaseURL != "" {
		if err := session.Navigate(ctx, opts.BaseURL); err != nil {
			_ = session.Close()
			return nil, fmt.Errorf("session %q: %w", name, err)
		}
		m.logger.Stepf("session %q navigated to base URL %s", name, opts.BaseURL)
	}
	return session, nil
}

func (m *SessionManager) launch(name string, opts SessionOptions) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[name]; exists {
		return nil, fmt.Errorf("session %q already exists", name)
	}
	if len(m.sessions) >= m.maxSessions {
		return nil, fmt.Errorf("maximum number of sessions (%d) reached", m.maxSessions)
	}
	if !m.initialized {
		return nil, fmt.Errorf("session manager not initialized")
	}

	browser, err := m.browserType(opts.Browser).Launch(pw.BrowserTypeLaunchOptions{
		Headless: pw.Bool(opts.Headless),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to launch %s: %w", opts.Browser, err)
	}

	browserContext, err := browser.NewContext(pw.BrowserNewContextOptions{
		Viewport: &pw.Size{
			Width:  opts.Viewport.Width,
			Height: opts.Viewport.Height,
		},
	})
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := browserContext.NewPage()
	if err != nil {
		browserContext.Close()
		browser.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	page.SetDefaultTimeout(opts.Timeout)

	now := time.Now()
	session := &Session{
		Name:        name,
		BrowserName: opts.Browser,
		Browser:     browser,
		Context:     browserContext,
		Page:        page,
		Headless:    opts.Headless,
		CreatedAt:   now,
		LastUsedAt:  now,
		manager:     m,
	}

	m.sessions[name] = session
	m.logger.Infof("%s browser launched for session %q", opts.Browser, name)
	return session, nil
}

func (m *SessionManager) browserType(name string) pw.BrowserType {
	switch name {
	case Firefox:
		return m.runtime.Firefox
	case WebKit:
		return m.runtime.WebKit
	default:
		return m.runtime.Chromium
	}
}

// Factory returns a function that starts sessions with opts. It has the shape
// the worker pool expects of a session factory.
func (m *SessionManager) Factory(opts SessionOptions) func(ctx context.Context, name string) (driver.Session, error) {
	return func(ctx context.Context, name string) (driver.Session, error) {
		session, err := m.StartSession(ctx, name, opts)
		if err != nil {
			return nil, err
		}
		return session, nil
	}
}

// CloseSession closes and removes a browser session.
func (m *SessionManager) CloseSession(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[name]
	if !exists {
		return fmt.Errorf("session %q not found", name)
	}

	delete(m.sessions, name)
	m.logger.Infof("session %q closed", name)
	return session.release()
}

// GetSession retrieves an active session by name.
func (m *SessionManager) GetSession(name string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[name]
	if !exists {
		return nil, fmt.Errorf("session %q not found", name)
	}
	return session, nil
}

// ListSessions returns information about all active sessions.
func (m *SessionManager) ListSessions() []SessionInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]SessionInfo, 0, len(m.sessions))
	for _, session := range m.sessions {
		infos = append(infos, session.Info())
	}
	return infos
}

// HasSessions returns true if there are any active sessions.
func (m *SessionManager) HasSessions() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions) > 0
}

// CloseAll closes all active sessions.
func (m *SessionManager) CloseAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeAllLocked()
}

func (m *SessionManager) closeAllLocked() error {
	var errs []error
	for name, session := range m.sessions {
		if err := session.release(); err != nil {
			errs = append(errs, fmt.Errorf("session %q: %w", name, err))
		}
		delete(m.sessions, name)
	}
	return errors.Join(errs...)
}

// Shutdown closes all sessions and stops Playwright.
func (m *SessionManager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	closeErr := m.closeAllLocked()

	if m.initialized && m.runtime != nil {
		if err := m.runtime.Stop(); err != nil {
			return errors.Join(closeErr, fmt.Errorf("failed to stop playwright: %w", err))
		}
		m.initialized = false
		m.logger.Infof("playwright stopped")
	}
	return closeErr
}

// SetMaxSessions sets the maximum number of concurrent sessions.
func (m *SessionManager) SetMaxSessions(max int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxSessions = max
}
