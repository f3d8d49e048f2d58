package markup

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/smartfind/pkg/driver"
	"github.com/entrhq/smartfind/pkg/locator"
)

type rawSession struct {
	markup string
	err    error
}

func (s *rawSession) FindElement(_ context.Context, loc locator.Locator) (driver.Element, error) {
	return nil, driver.NotFound(loc)
}
func (s *rawSession) Markup(context.Context) (string, error)     { return s.markup, s.err }
func (s *rawSession) CurrentURL(context.Context) (string, error) { return "about:blank", nil }
func (s *rawSession) Navigate(context.Context, string) error     { return nil }
func (s *rawSession) Close() error                               { return nil }

type screenshotSession struct{ rawSession }

func (s *screenshotSession) CaptureScreenshot(context.Context) ([]byte, error) {
	return []byte("png"), nil
}

func TestCleaningSessionMarkup(t *testing.T) {
	raw := &rawSession{markup: `<html><head><script>track()</script></head>` +
		`<body><input name="login" data-testid="user" onclick="x()"></body></html>`}
	s := NewCleaningSession(raw, 0, nil)

	got, err := s.Markup(context.Background())
	require.NoError(t, err)
	assert.Contains(t, got, `name="login"`)
	assert.Contains(t, got, `data-testid="user"`)
	assert.NotContains(t, got, "track()")
	assert.NotContains(t, got, "onclick")
}

func TestCleaningSessionPassesErrorsThrough(t *testing.T) {
	boom := errors.New("target closed")
	s := NewCleaningSession(&rawSession{err: boom}, 0, nil)

	_, err := s.Markup(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestCleaningSessionScreenshots(t *testing.T) {
	_, err := NewCleaningSession(&rawSession{}, 0, nil).CaptureScreenshot(context.Background())
	assert.ErrorIs(t, err, ErrNoScreenshots)

	png, err := NewCleaningSession(&screenshotSession{}, 0, nil).CaptureScreenshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), png)
}
