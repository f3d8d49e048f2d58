package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/entrhq/smartfind/pkg/driver/playwright"
	"github.com/entrhq/smartfind/pkg/locator"
)

// Element is a named element with its ranked candidates.
type Element struct {
	Name       string
	Candidates []locator.Locator
}

// ResolveProject picks the active project: the cli value, then the
// SMARTFIND_PROJECT environment variable, then active_project. With none of
// them set and exactly one project defined, that project is used.
func (c *Config) ResolveProject(cli string) (string, *Project, error) {
	name := strings.TrimSpace(cli)
	source := "flag"
	if name == "" {
		name = strings.TrimSpace(os.Getenv(ProjectEnv))
		source = ProjectEnv
	}
	if name == "" {
		name = c.ActiveProject
		source = "active_project"
	}
	if name == "" {
		if len(c.Projects) == 1 {
			name = c.ProjectNames()[0]
		} else {
			return "", nil, fmt.Errorf("no project selected: set -project, %s or active_project (defined: %s)",
				ProjectEnv, strings.Join(c.ProjectNames(), ", "))
		}
	}

	p, ok := c.Projects[name]
	if !ok {
		return "", nil, fmt.Errorf("project %q from %s is not defined", name, source)
	}
	return name, p, nil
}

// ElementNames returns the element names of the project, sorted.
func (p *Project) ElementNames() []string {
	names := make([]string, 0, len(p.Elements))
	for name := range p.Elements {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Candidates converts the named element's locators, keeping their order.
func (p *Project) Candidates(name string) ([]locator.Locator, error) {
	specs, ok := p.Elements[name]
	if !ok {
		return nil, fmt.Errorf("element %q is not defined", name)
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("element %q has no locators", name)
	}

	out := make([]locator.Locator, 0, len(specs))
	for i, spec := range specs {
		loc, err := locator.New(spec.Strategy, spec.Value)
		if err != nil {
			return nil, fmt.Errorf("element %q locator %d: %w", name, i+1, err)
		}
		out = append(out, loc)
	}
	return out, nil
}

// Select returns the elements whose names match any of the glob patterns,
// sorted by name. No patterns selects every element.
func (p *Project) Select(patterns []string) ([]Element, error) {
	matchers := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid element pattern '%s': %w", pattern, err)
		}
		matchers = append(matchers, g)
	}

	var out []Element
	for _, name := range p.ElementNames() {
		if !matchesAny(matchers, name) {
			continue
		}
		candidates, err := p.Candidates(name)
		if err != nil {
			return nil, err
		}
		out = append(out, Element{Name: name, Candidates: candidates})
	}
	return out, nil
}

func matchesAny(matchers []glob.Glob, name string) bool {
	if len(matchers) == 0 {
		return true
	}
	for _, g := range matchers {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// SessionOptions returns the Playwright session settings for the project.
func (p *Project) SessionOptions() playwright.SessionOptions {
	opts := playwright.SessionOptions{
		Browser:  p.Browser,
		Headless: p.IsHeadless(),
		Timeout:  p.TimeoutMS,
		BaseURL:  p.BaseURL,
	}
	if p.Viewport.Width > 0 && p.Viewport.Height > 0 {
		opts.Viewport = &playwright.Viewport{Width: p.Viewport.Width, Height: p.Viewport.Height}
	}
	return opts
}
