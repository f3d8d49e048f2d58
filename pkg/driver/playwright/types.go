package playwright

import (
	"fmt"
	"strings"
	"time"
)

// Browser engines a session can be launched with.
const (
	Chromium = "chromium"
	Firefox  = "firefox"
	WebKit   = "webkit"
)

// Default values for new sessions
const (
	DefaultTimeout        = 30000.0 // 30 seconds in milliseconds
	DefaultViewportWidth  = 1920
	DefaultViewportHeight = 1080
	DefaultMaxSessions    = 5
)

// SessionOptions configures a new browser session.
type SessionOptions struct {
	// Browser is one of Chromium, Firefox or WebKit. Empty means Chromium.
	Browser string

	// Headless controls whether the browser runs without a visible window
	Headless bool

	// Viewport sets the initial viewport size
	Viewport *Viewport

	// Timeout sets the default timeout for actions (in milliseconds)
	Timeout float64

	// BaseURL is opened right after the page is created, when set
	BaseURL string
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

// SessionInfo contains metadata about a browser session.
type SessionInfo struct {
	Name       string
	Browser    string
	CurrentURL string
	Headless   bool
	CreatedAt  time.Time
	LastUsedAt time.Time
}

// withDefaults fills unset options.
func (o SessionOptions) withDefaults() (SessionOptions, error) {
	browser, err := NormalizeBrowser(o.Browser)
	if err != nil {
		return o, err
	}
	o.Browser = browser

	if o.Viewport == nil {
		o.Viewport = &Viewport{Width: DefaultViewportWidth, Height: DefaultViewportHeight}
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
	return o, nil
}

// NormalizeBrowser maps a browser name and its common aliases to the engine
// name Playwright launches.
func NormalizeBrowser(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", Chromium, "chrome":
		return Chromium, nil
	case Firefox:
		return Firefox, nil
	case WebKit, "safari":
		return WebKit, nil
	default:
		return "", fmt.Errorf("unsupported browser %q (want %s, %s or %s)", name, Chromium, Firefox, WebKit)
	}
}
