// Package driver defines the boundary between element resolution and the
// browser automation library underneath it.
//
// Implementations live in sub-packages (playwright, rod). The resolver only
// depends on the interfaces here, which keeps it testable with in-memory
// fakes and lets each test worker bring its own live page.
package driver

import (
	"context"
	"errors"

	"github.com/entrhq/smartfind/pkg/locator"
)

// ErrNoSuchElement is returned by Page.FindElement when nothing on the page
// matches the locator. Any other error from FindElement means the page or
// session itself is unusable.
var ErrNoSuchElement = errors.New("no such element")

// Page is a live browser page owned by a single worker.
type Page interface {
	// FindElement looks up the first element matching loc right now,
	// without waiting. A miss is reported as ErrNoSuchElement (possibly
	// wrapped).
	FindElement(ctx context.Context, loc locator.Locator) (Element, error)

	// Markup returns the full serialized markup of the current document.
	Markup(ctx context.Context) (string, error)

	// CurrentURL returns the URL of the current document.
	CurrentURL(ctx context.Context) (string, error)
}

// Element is a handle to a resolved element.
type Element interface {
	Click(ctx context.Context) error
	Fill(ctx context.Context, value string) error
	Clear(ctx context.Context) error
	Text(ctx context.Context) (string, error)
	IsVisible(ctx context.Context) (bool, error)
}

// ScreenshotCapturer is implemented by anything that can produce a PNG of
// its current state. Failure reporting checks for this capability instead
// of inspecting concrete page types.
type ScreenshotCapturer interface {
	CaptureScreenshot(ctx context.Context) ([]byte, error)
}

// Navigator is implemented by pages that can load a URL.
type Navigator interface {
	Navigate(ctx context.Context, url string) error
}

// Session is a page with a lifecycle, handed to a single worker.
type Session interface {
	Page
	Navigator
	Close() error
}

// NotFound wraps ErrNoSuchElement with the locator that missed.
func NotFound(loc locator.Locator) error {
	return &notFoundError{loc: loc}
}

type notFoundError struct {
	loc locator.Locator
}

func (e *notFoundError) Error() string {
	return "no such element: " + e.loc.String()
}

func (e *notFoundError) Unwrap() error {
	return ErrNoSuchElement
}

// IsNotFound reports whether err signals a locator miss.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNoSuchElement)
}
