package playwright

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	pw "github.com/playwright-community/playwright-go"

	"github.com/entrhq/smartfind/pkg/driver"
	"github.com/entrhq/smartfind/pkg/locator"
)

// Session is a launched browser with one page. It implements driver.Session
// and driver.ScreenshotCapturer.
type Session struct {
	// Name is the unique identifier for this session
	Name string

	// BrowserName is the engine the session was launched with
	BrowserName string

	Browser pw.Browser
	Context pw.BrowserContext
	Page    pw.Page

	Headless  bool
	CreatedAt time.Time

	mu         sync.Mutex
	LastUsedAt time.Time

	manager   *SessionManager
	closeOnce sync.Once
	closeErr  error
}

var (
	_ driver.Session            = (*Session)(nil)
	_ driver.ScreenshotCapturer = (*Session)(nil)
)

func (s *Session) touch() {
	s.mu.Lock()
	s.LastUsedAt = time.Now()
	s.mu.Unlock()
}

// Info returns a snapshot of the session's metadata.
func (s *Session) Info() SessionInfo {
	s.mu.Lock()
	lastUsed := s.LastUsedAt
	s.mu.Unlock()

	return SessionInfo{
		Name:       s.Name,
		Browser:    s.BrowserName,
		CurrentURL: s.Page.URL(),
		Headless:   s.Headless,
		CreatedAt:  s.CreatedAt,
		LastUsedAt: lastUsed,
	}
}

// FindElement queries the page once for the first element matching loc.
// Locators the page cannot interpret as a selector count as misses.
func (s *Session) FindElement(ctx context.Context, loc locator.Locator) (driver.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.touch()

	sel, err := driver.Translate(loc)
	if err != nil {
		return nil, fmt.Errorf("invalid locator %s: %v: %w", loc, err, driver.ErrNoSuchElement)
	}

	handle, err := s.Page.QuerySelector(sel.String())
	if err != nil {
		if driver.IsSelectorSyntaxError(err) {
			return nil, fmt.Errorf("invalid selector %s: %v: %w", sel, err, driver.ErrNoSuchElement)
		}
		return nil, fmt.Errorf("query %s: %w", loc, err)
	}
	if handle == nil {
		return nil, driver.NotFound(loc)
	}
	return &element{handle: handle}, nil
}

// Markup returns the serialized document.
func (s *Session) Markup(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.touch()

	content, err := s.Page.Content()
	if err != nil {
		return "", fmt.Errorf("failed to read page content: %w", err)
	}
	return content, nil
}

// CurrentURL returns the page URL.
func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.Page.URL(), nil
}

// Navigate loads url and waits for the load event.
func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.touch()

	if _, err := s.Page.Goto(url, pw.PageGotoOptions{WaitUntil: pw.WaitUntilStateLoad}); err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	return nil
}

// CaptureScreenshot returns a full-page PNG.
func (s *Session) CaptureScreenshot(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.touch()

	png, err := s.Page.Screenshot(pw.PageScreenshotOptions{FullPage: pw.Bool(true)})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	return png, nil
}

// Close closes the page, context and browser and removes the session from
// its manager. Safe to call multiple times.
func (s *Session) Close() error {
	if m := s.manager; m != nil {
		m.mu.Lock()
		if m.sessions[s.Name] == s {
			delete(m.sessions, s.Name)
		}
		m.mu.Unlock()
	}
	return s.release()
}

func (s *Session) release() error {
	s.closeOnce.Do(func() {
		var errs []error
		if err := s.Page.Close(); err != nil {
			errs = append(errs, err)
		}
		if err := s.Context.Close(); err != nil {
			errs = append(errs, err)
		}
		if err := s.Browser.Close(); err != nil {
			errs = append(errs, err)
		}
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}

// element wraps a Playwright element handle.
type element struct {
	handle pw.ElementHandle
}

func (e *element) Click(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.handle.Click()
}

func (e *element) Fill(ctx context.Context, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.handle.Fill(value)
}

func (e *element) Clear(ctx context.Context) error {
	return e.Fill(ctx, "")
}

func (e *element) Text(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return e.handle.TextContent()
}

func (e *element) IsVisible(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return e.handle.IsVisible()
}
