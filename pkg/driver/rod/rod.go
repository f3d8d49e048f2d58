// Package rod implements the driver interfaces on top of go-rod, driving
// Chrome over the DevTools protocol. It is the lightweight alternative to the
// playwright driver: no Node runtime, Chromium only.
package rod

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/entrhq/smartfind/pkg/driver"
	"github.com/entrhq/smartfind/pkg/locator"
	"github.com/entrhq/smartfind/pkg/logging"
)

// Options configures a session.
type Options struct {
	// RemoteURL connects to an existing browser's DevTools endpoint instead
	// of launching a local Chrome.
	RemoteURL string

	Headless bool

	// Viewport dimensions; zero values leave the browser default.
	Width  int
	Height int

	// BaseURL is opened right after the page is created, when set
	BaseURL string
}

// Session is one browser with one page.
type Session struct {
	name    string
	browser *rod.Browser
	page    *rod.Page
	lnch    *launcher.Launcher
	logger  *logging.Logger

	closeOnce sync.Once
	closeErr  error
}

var (
	_ driver.Session            = (*Session)(nil)
	_ driver.ScreenshotCapturer = (*Session)(nil)
)

// Open launches (or connects to) a browser and opens a blank page, then
// navigates to opts.BaseURL when set.
func Open(ctx context.Context, name string, opts Options, logger *logging.Logger) (*Session, error) {
	if logger == nil {
		logger = logging.Discard("rod")
	}

	s := &Session{name: name, logger: logger}

	wsURL := opts.RemoteURL
	if wsURL == "" {
		l := launcher.New().Headless(opts.Headless)
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("browser: launch: %w", err)
		}
		wsURL = u
		s.lnch = l
		logger.Infof("session %q launched local chrome", name)
	}

	b := rod.New().ControlURL(wsURL).Context(ctx)
	if err := b.Connect(); err != nil {
		s.cleanup()
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	// Detach the session from the launch context
	s.browser = b.Context(context.Background())

	page, err := s.browser.Page(proto.TargetCreateTarget{URL: ""})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("browser: create page: %w", err)
	}
	s.page = page

	if opts.Width > 0 && opts.Height > 0 {
		err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             opts.Width,
			Height:            opts.Height,
			DeviceScaleFactor: 1,
		})
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("browser: set viewport: %w", err)
		}
	}

	if opts.BaseURL != "" {
		if err := s.Navigate(ctx, opts.BaseURL); err != nil {
			s.Close()
			return nil, err
		}
		logger.Stepf("session %q navigated to base URL %s", name, opts.BaseURL)
	}
	return s, nil
}

// Factory returns a function that opens sessions with opts, in the shape the
// worker pool expects of a session factory.
func Factory(opts Options, logger *logging.Logger) func(ctx context.Context, name string) (driver.Session, error) {
	return func(ctx context.Context, name string) (driver.Session, error) {
		s, err := Open(ctx, name, opts, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// FindElement checks the page once for an element matching loc.
func (s *Session) FindElement(ctx context.Context, loc locator.Locator) (driver.Element, error) {
	sel, err := driver.Translate(loc)
	if err != nil {
		return nil, fmt.Errorf("invalid locator %s: %v: %w", loc, err, driver.ErrNoSuchElement)
	}

	page := s.page.Context(ctx)
	var (
		found bool
		el    *rod.Element
	)
	if sel.Kind == driver.KindXPath {
		found, el, err = page.HasX(sel.Expression)
	} else {
		found, el, err = page.Has(sel.Expression)
	}
	if err != nil {
		if driver.IsSelectorSyntaxError(err) {
			return nil, fmt.Errorf("invalid selector %s: %v: %w", sel, err, driver.ErrNoSuchElement)
		}
		return nil, fmt.Errorf("query %s: %w", loc, err)
	}
	if !found {
		return nil, driver.NotFound(loc)
	}
	return &element{el: el}, nil
}

// Markup returns the serialized document.
func (s *Session) Markup(ctx context.Context) (string, error) {
	html, err := s.page.Context(ctx).HTML()
	if err != nil {
		return "", fmt.Errorf("failed to read page content: %w", err)
	}
	return html, nil
}

// CurrentURL returns the page URL.
func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	info, err := s.page.Context(ctx).Info()
	if err != nil {
		return "", fmt.Errorf("failed to read page info: %w", err)
	}
	return info.URL, nil
}

// Navigate loads url and waits for the load event.
func (s *Session) Navigate(ctx context.Context, url string) error {
	page := s.page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		s.logger.Warnf("wait for load of %s: %v", url, err)
	}
	return nil
}

// CaptureScreenshot returns a full-page PNG.
func (s *Session) CaptureScreenshot(ctx context.Context) ([]byte, error) {
	png, err := s.page.Context(ctx).Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	return png, nil
}

// Close closes the page and the browser, and cleans up a locally launched
// Chrome. Safe to call multiple times.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		var errs []error
		if s.page != nil {
			if err := s.page.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		if s.browser != nil {
			if err := s.browser.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		s.cleanup()
		s.closeErr = errors.Join(errs...)
		s.logger.Infof("session %q closed", s.name)
	})
	return s.closeErr
}

func (s *Session) cleanup() {
	if s.lnch != nil {
		s.lnch.Cleanup()
		s.lnch = nil
	}
}

// element wraps a rod element.
type element struct {
	el *rod.Element
}

func (e *element) Click(ctx context.Context) error {
	return e.el.Context(ctx).Click(proto.InputMouseButtonLeft, 1)
}

func (e *element) Fill(ctx context.Context, value string) error {
	el := e.el.Context(ctx)
	if err := el.SelectAllText(); err != nil {
		return err
	}
	return el.Input(value)
}

func (e *element) Clear(ctx context.Context) error {
	return e.Fill(ctx, "")
}

func (e *element) Text(ctx context.Context) (string, error) {
	return e.el.Context(ctx).Text()
}

func (e *element) IsVisible(ctx context.Context) (bool, error) {
	return e.el.Context(ctx).Visible()
}
