package markup

import (
	"context"
	"errors"
	"fmt"

	"github.com/entrhq/smartfind/pkg/driver"
	"github.com/entrhq/smartfind/pkg/logging"
)

// ErrNoScreenshots is returned when the wrapped session cannot capture one.
var ErrNoScreenshots = errors.New("session does not support screenshots")

// CleaningSession wraps a session so that Markup returns cleaned markup.
// Everything else passes through.
type CleaningSession struct {
	driver.Session
	maxChars int
	logger   *logging.Logger
}

var _ driver.ScreenshotCapturer = (*CleaningSession)(nil)

// NewCleaningSession wraps s. maxChars caps the cleaned output when positive.
func NewCleaningSession(s driver.Session, maxChars int, logger *logging.Logger) *CleaningSession {
	if logger == nil {
		logger = logging.Discard("markup")
	}
	return &CleaningSession{Session: s, maxChars: maxChars, logger: logger}
}

// Markup returns the cleaned document.
func (c *CleaningSession) Markup(ctx context.Context) (string, error) {
	raw, err := c.Session.Markup(ctx)
	if err != nil {
		return "", err
	}
	cleaned, err := Clean(raw, c.maxChars)
	if err != nil {
		return "", fmt.Errorf("failed to clean page markup: %w", err)
	}
	if cleaned.Truncated {
		c.logger.Warnf("page markup truncated to %d characters", c.maxChars)
	}
	c.logger.Debugf("cleaned markup from %d to %d characters", len(raw), len(cleaned.HTML))
	return cleaned.HTML, nil
}

// CaptureScreenshot delegates to the wrapped session when it can capture.
func (c *CleaningSession) CaptureScreenshot(ctx context.Context) ([]byte, error) {
	if sc, ok := c.Session.(driver.ScreenshotCapturer); ok {
		return sc.CaptureScreenshot(ctx)
	}
	return nil, ErrNoScreenshots
}
