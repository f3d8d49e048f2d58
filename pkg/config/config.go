// Package config loads smartfind.yaml: the suggestion service settings and
// the per-project browser and element definitions the harness runs against.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/entrhq/smartfind/pkg/driver/playwright"
)

const (
	// DefaultFileName is the config file looked up when no path is given.
	DefaultFileName = "smartfind.yaml"

	// ProjectEnv overrides active_project.
	ProjectEnv = "SMARTFIND_PROJECT"

	DefaultModel       = "gpt-4o"
	DefaultTemperature = 0.5
	DefaultMaxTokens   = 150

	DefaultResultsDir    = "results"
	DefaultSuggestionLog = "locator-suggestions.json"
)

// Driver names.
const (
	DriverPlaywright = "playwright"
	DriverRod        = "rod"
)

// Config is the root of smartfind.yaml.
type Config struct {
	ActiveProject string `yaml:"active_project" json:"active_project"`

	// LogDir overrides the logger's default directory
	LogDir string `yaml:"log_dir" json:"log_dir"`

	ResultsDir    string `yaml:"results_dir" json:"results_dir"`
	SuggestionLog string `yaml:"suggestion_log" json:"suggestion_log"`

	LLM LLMConfig `yaml:"llm" json:"llm"`

	Projects map[string]*Project `yaml:"projects" json:"projects"`

	// Path is where the config was read from; empty for defaults.
	Path string `yaml:"-" json:"-"`
}

// LLMConfig configures the suggestion service.
type LLMConfig struct {
	Model       string  `yaml:"model" json:"model"`
	BaseURL     string  `yaml:"base_url" json:"base_url"`
	APIKey      string  `yaml:"api_key" json:"api_key"`
	Temperature float64 `yaml:"temperature" json:"temperature"`
	MaxTokens   int     `yaml:"max_tokens" json:"max_tokens"`

	// SuggestTimeout bounds one suggestion round trip; zero means no bound.
	SuggestTimeout time.Duration `yaml:"suggest_timeout" json:"suggest_timeout"`

	// CleanMarkup strips scripts, styles and non-targeting attributes from
	// the page before it is sent. MaxMarkupChars caps the cleaned text.
	CleanMarkup    bool `yaml:"clean_markup" json:"clean_markup"`
	MaxMarkupChars int  `yaml:"max_markup_chars" json:"max_markup_chars"`
}

// Project is one application under test.
type Project struct {
	Driver   string `yaml:"driver" json:"driver"`
	Browser  string `yaml:"browser" json:"browser"`
	Headless *bool  `yaml:"headless" json:"headless"`
	BaseURL  string `yaml:"base_url" json:"base_url"`

	// RemoteURL attaches the rod driver to a running browser.
	RemoteURL string `yaml:"remote_url" json:"remote_url"`

	TimeoutMS float64  `yaml:"timeout_ms" json:"timeout_ms"`
	Viewport  Viewport `yaml:"viewport" json:"viewport"`

	// Elements maps an element name to its ranked candidate locators.
	Elements map[string][]LocatorSpec `yaml:"elements" json:"elements"`
}

// Viewport is the browser window size.
type Viewport struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// LocatorSpec is a locator as written in the file.
type LocatorSpec struct {
	Strategy string `yaml:"strategy" json:"strategy"`
	Value    string `yaml:"value" json:"value"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		ResultsDir:    DefaultResultsDir,
		SuggestionLog: DefaultSuggestionLog,
		LLM: LLMConfig{
			Model:       DefaultModel,
			Temperature: DefaultTemperature,
			MaxTokens:   DefaultMaxTokens,
		},
		Projects: make(map[string]*Project),
	}
}

// Load reads the YAML file at path over the defaults. A missing file at the
// default path yields the defaults; a missing file anywhere else is an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultFileName
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.Path = path
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.Projects == nil {
		cfg.Projects = make(map[string]*Project)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2, got %v", c.LLM.Temperature)
	}
	if c.LLM.MaxTokens < 0 {
		return fmt.Errorf("llm.max_tokens cannot be negative")
	}
	if c.LLM.SuggestTimeout < 0 {
		return fmt.Errorf("llm.suggest_timeout cannot be negative")
	}
	if c.LLM.MaxMarkupChars < 0 {
		return fmt.Errorf("llm.max_markup_chars cannot be negative")
	}

	if c.ActiveProject != "" {
		if _, ok := c.Projects[c.ActiveProject]; !ok {
			return fmt.Errorf("active_project %q is not defined", c.ActiveProject)
		}
	}

	for _, name := range c.ProjectNames() {
		if err := c.Projects[name].validate(); err != nil {
			return fmt.Errorf("project %q: %w", name, err)
		}
	}
	return nil
}

// ProjectNames returns the defined project names, sorted.
func (c *Config) ProjectNames() []string {
	names := make([]string, 0, len(c.Projects))
	for name := range c.Projects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (p *Project) validate() error {
	if p == nil {
		return fmt.Errorf("project is empty")
	}

	switch p.Driver {
	case "", DriverPlaywright:
		if _, err := playwright.NormalizeBrowser(p.Browser); err != nil {
			return err
		}
	case DriverRod:
		if p.Browser != "" && p.Browser != playwright.Chromium && p.Browser != "chrome" {
			return fmt.Errorf("driver rod only supports chromium, got %q", p.Browser)
		}
	default:
		return fmt.Errorf("invalid driver: %s (must be '%s' or '%s')", p.Driver, DriverPlaywright, DriverRod)
	}

	if p.TimeoutMS < 0 {
		return fmt.Errorf("timeout_ms cannot be negative")
	}
	if p.Viewport.Width < 0 || p.Viewport.Height < 0 {
		return fmt.Errorf("viewport dimensions cannot be negative")
	}

	for _, name := range p.ElementNames() {
		if _, err := p.Candidates(name); err != nil {
			return err
		}
	}
	return nil
}

// IsHeadless reports the headless setting, defaulting to true.
func (p *Project) IsHeadless() bool {
	return p.Headless == nil || *p.Headless
}

// DriverName returns the configured driver, defaulting to playwright.
func (p *Project) DriverName() string {
	if p.Driver == "" {
		return DriverPlaywright
	}
	return p.Driver
}
