// Package pages holds page objects built on the resolver. Each page keeps
// ranked candidate locators per element and resolves them on demand, so a
// renamed field heals instead of failing the scenario.
package pages

import (
	"context"
	"fmt"
	"strings"

	"github.com/entrhq/smartfind/pkg/driver"
	"github.com/entrhq/smartfind/pkg/locator"
	"github.com/entrhq/smartfind/pkg/logging"
	"github.com/entrhq/smartfind/pkg/resolver"
)

// Candidate lists for the login form, best guess first.
var (
	UsernameLocators = []locator.Locator{
		locator.ByID("UserName"),
		locator.ByName("login"),
		locator.ByCSS("input[name='login']"),
	}

	PasswordLocators = []locator.Locator{
		locator.ByID("Password_00"),
		locator.ByName("password_00"),
		locator.ByCSS("input[type='password_00']"),
	}

	LoginButtonLocators = []locator.Locator{
		locator.ByID("btnLogin"),
		locator.ByName("commit"),
		locator.ByCSS("input[type='submit']"),
	}
)

// DashboardPath is the path a successful login lands on.
const DashboardPath = "/dashboard"

// LoginPage is the login form of the application under test.
type LoginPage struct {
	page     driver.Page
	resolver *resolver.Resolver
	logger   *logging.Logger
}

// NewLoginPage binds the login page to one worker's page.
func NewLoginPage(page driver.Page, r *resolver.Resolver, logger *logging.Logger) *LoginPage {
	if r == nil {
		r = resolver.New()
	}
	if logger == nil {
		logger = logging.Discard("pages")
	}
	return &LoginPage{page: page, resolver: r, logger: logger}
}

// Login resolves all three fields first, then fills the credentials and
// submits. Nothing is typed if any field cannot be resolved.
func (p *LoginPage) Login(ctx context.Context, username, password string) error {
	p.logger.Stepf("login as %s", username)

	user, err := p.resolver.Resolve(ctx, p.page, UsernameLocators)
	if err != nil {
		return fmt.Errorf("username field: %w", err)
	}
	pass, err := p.resolver.Resolve(ctx, p.page, PasswordLocators)
	if err != nil {
		return fmt.Errorf("password field: %w", err)
	}
	button, err := p.resolver.Resolve(ctx, p.page, LoginButtonLocators)
	if err != nil {
		return fmt.Errorf("login button: %w", err)
	}

	if err := fill(ctx, user.Element, username); err != nil {
		return fmt.Errorf("username field: %w", err)
	}
	if err := fill(ctx, pass.Element, password); err != nil {
		return fmt.Errorf("password field: %w", err)
	}
	if err := button.Element.Click(ctx); err != nil {
		return fmt.Errorf("login button: %w", err)
	}
	return nil
}

// IsLoginButtonDisplayed reports whether the login button resolves and is
// visible. Resolution failures read as not displayed.
func (p *LoginPage) IsLoginButtonDisplayed(ctx context.Context) bool {
	res, err := p.resolver.Resolve(ctx, p.page, LoginButtonLocators)
	if err != nil {
		p.logger.Warnf("login button not resolved: %v", err)
		return false
	}
	visible, err := res.Element.IsVisible(ctx)
	if err != nil {
		p.logger.Warnf("login button visibility: %v", err)
		return false
	}
	return visible
}

// IsOnDashboard reports whether the current URL is the dashboard.
func (p *LoginPage) IsOnDashboard(ctx context.Context) (bool, error) {
	url, err := p.page.CurrentURL(ctx)
	if err != nil {
		return false, err
	}
	return strings.Contains(url, DashboardPath), nil
}

func fill(ctx context.Context, el driver.Element, value string) error {
	if err := el.Clear(ctx); err != nil {
		return err
	}
	return el.Fill(ctx, value)
}
