package pages

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/smartfind/pkg/driver"
	"github.com/entrhq/smartfind/pkg/locator"
	"github.com/entrhq/smartfind/pkg/resolver"
)

// field records what was typed into it.
type field struct {
	name    string
	value   string
	clicks  int
	hidden  bool
	actions []string
}

func (f *field) Click(context.Context) error {
	f.clicks++
	f.actions = append(f.actions, "click")
	return nil
}

func (f *field) Fill(_ context.Context, v string) error {
	f.value = v
	f.actions = append(f.actions, "fill")
	return nil
}

func (f *field) Clear(context.Context) error {
	f.value = ""
	f.actions = append(f.actions, "clear")
	return nil
}

func (f *field) Text(context.Context) (string, error)    { return f.value, nil }
func (f *field) IsVisible(context.Context) (bool, error) { return !f.hidden, nil }

type formPage struct {
	elements map[locator.Locator]driver.Element
	url      string
}

func (p *formPage) FindElement(_ context.Context, loc locator.Locator) (driver.Element, error) {
	if el, ok := p.elements[loc]; ok {
		return el, nil
	}
	return nil, driver.NotFound(loc)
}

func (p *formPage) Markup(context.Context) (string, error)     { return "<form></form>", nil }
func (p *formPage) CurrentURL(context.Context) (string, error) { return p.url, nil }

// githubForm matches only the fallback candidates, the way the live form does.
func githubForm() (*formPage, *field, *field, *field) {
	user := &field{name: "login"}
	pass := &field{name: "password"}
	button := &field{name: "commit"}
	return &formPage{
		elements: map[locator.Locator]driver.Element{
			locator.ByName("login"):                    user,
			locator.ByCSS("input[type='password_00']"): pass,
			locator.ByID("btnLogin"):                   button,
		},
		url: "https://example.test/session",
	}, user, pass, button
}

func TestLoginFillsAndSubmits(t *testing.T) {
	page, user, pass, button := githubForm()
	lp := NewLoginPage(page, resolver.New(), nil)

	require.NoError(t, lp.Login(context.Background(), "alice", "s3cret"))

	assert.Equal(t, "alice", user.value)
	assert.Equal(t, "s3cret", pass.value)
	assert.Equal(t, []string{"clear", "fill"}, user.actions)
	assert.Equal(t, 1, button.clicks)
}

func TestLoginTypesNothingWhenAFieldIsMissing(t *testing.T) {
	page, user, _, button := githubForm()
	delete(page.elements, locator.ByCSS("input[type='password_00']"))
	lp := NewLoginPage(page, nil, nil)

	err := lp.Login(context.Background(), "alice", "s3cret")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password field")
	assert.Equal(t, resolver.NotFound, resolver.KindOf(err))

	var nf *resolver.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, PasswordLocators[0].String(), nf.Failed)

	assert.Empty(t, user.actions)
	assert.Zero(t, button.clicks)
}

func TestIsLoginButtonDisplayed(t *testing.T) {
	page, _, _, button := githubForm()
	lp := NewLoginPage(page, resolver.New(), nil)
	assert.True(t, lp.IsLoginButtonDisplayed(context.Background()))

	button.hidden = true
	assert.False(t, lp.IsLoginButtonDisplayed(context.Background()))

	delete(page.elements, locator.ByID("btnLogin"))
	assert.False(t, lp.IsLoginButtonDisplayed(context.Background()))
}

func TestIsOnDashboard(t *testing.T) {
	page, _, _, _ := githubForm()
	lp := NewLoginPage(page, nil, nil)

	ok, err := lp.IsOnDashboard(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	page.url = "https://example.test/dashboard?tab=loans"
	ok, err = lp.IsOnDashboard(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}
