package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/smartfind/pkg/driver/playwright"
	"github.com/entrhq/smartfind/pkg/locator"
	"github.com/entrhq/smartfind/pkg/suggest"
)

const sampleYAML = `
active_project: github
results_dir: out/results
llm:
  model: gpt-4o-mini
  temperature: 0.2
  max_tokens: 200
  suggest_timeout: 20s
  clean_markup: true
  max_markup_chars: 40000
projects:
  github:
    browser: firefox
    headless: false
    base_url: https://github.com/login
    timeout_ms: 15000
    viewport:
      width: 1280
      height: 720
    elements:
      username:
        - {strategy: id, value: UserName}
        - {strategy: name, value: login}
        - {strategy: css, value: "input[name='login']"}
      login_button:
        - {strategy: id, value: btnLogin}
      password:
        - {strategy: id, value: Password_00}
  reimbursement:
    driver: rod
    base_url: https://reimburse.example.test
    elements:
      submit:
        - {strategy: xpath, value: "//button[@type='submit']"}
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "github", cfg.ActiveProject)
	assert.Equal(t, "out/results", cfg.ResultsDir)
	assert.Equal(t, DefaultSuggestionLog, cfg.SuggestionLog, "unset keys keep defaults")

	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 0.2, cfg.LLM.Temperature)
	assert.Equal(t, 200, cfg.LLM.MaxTokens)
	assert.Equal(t, 20*time.Second, cfg.LLM.SuggestTimeout)
	assert.True(t, cfg.LLM.CleanMarkup)
	assert.Equal(t, 40000, cfg.LLM.MaxMarkupChars)

	assert.Equal(t, []string{"github", "reimbursement"}, cfg.ProjectNames())

	gh := cfg.Projects["github"]
	assert.False(t, gh.IsHeadless())
	assert.Equal(t, DriverPlaywright, gh.DriverName())
	assert.Equal(t, DriverRod, cfg.Projects["reimbursement"].DriverName())
	assert.True(t, cfg.Projects["reimbursement"].IsHeadless())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, DefaultModel, cfg.LLM.Model)
	assert.Equal(t, DefaultTemperature, cfg.LLM.Temperature)
	assert.Equal(t, DefaultMaxTokens, cfg.LLM.MaxTokens)
	assert.Equal(t, DefaultResultsDir, cfg.ResultsDir)
	assert.NotNil(t, cfg.Projects)
	assert.NoError(t, cfg.Validate())
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "malformed",
			yaml:    "projects: [",
			wantErr: "failed to parse config file",
		},
		{
			name:    "unknown active project",
			yaml:    "active_project: nope\n",
			wantErr: `active_project "nope" is not defined`,
		},
		{
			name:    "unknown strategy",
			yaml:    "projects:\n  p:\n    elements:\n      e:\n        - {strategy: sibling, value: x}\n",
			wantErr: "unsupported locator type",
		},
		{
			name:    "element without locators",
			yaml:    "projects:\n  p:\n    elements:\n      e: []\n",
			wantErr: `element "e" has no locators`,
		},
		{
			name:    "unknown driver",
			yaml:    "projects:\n  p:\n    driver: selenium\n",
			wantErr: "invalid driver",
		},
		{
			name:    "unknown browser",
			yaml:    "projects:\n  p:\n    browser: netscape\n",
			wantErr: "unsupported browser",
		},
		{
			name:    "rod with firefox",
			yaml:    "projects:\n  p:\n    driver: rod\n    browser: firefox\n",
			wantErr: "only supports chromium",
		},
		{
			name:    "temperature out of range",
			yaml:    "llm:\n  temperature: 3\n",
			wantErr: "llm.temperature",
		},
		{
			name:    "negative timeout",
			yaml:    "llm:\n  suggest_timeout: -1s\n",
			wantErr: "llm.suggest_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "smartfind.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path)
	assert.Len(t, cfg.Projects, 2)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestLoadDefaultPathMissing(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, cfg.Path)
	assert.Equal(t, DefaultModel, cfg.LLM.Model)
}

func TestResolveProject(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	t.Setenv(ProjectEnv, "")
	name, _, err := cfg.ResolveProject("")
	require.NoError(t, err)
	assert.Equal(t, "github", name, "active_project is the fallback")

	t.Setenv(ProjectEnv, "reimbursement")
	name, p, err := cfg.ResolveProject("")
	require.NoError(t, err)
	assert.Equal(t, "reimbursement", name, "environment beats the file")
	assert.Equal(t, DriverRod, p.Driver)

	name, _, err = cfg.ResolveProject("github")
	require.NoError(t, err)
	assert.Equal(t, "github", name, "flag beats the environment")

	_, _, err = cfg.ResolveProject("missing")
	assert.ErrorContains(t, err, `project "missing" from flag is not defined`)
}

func TestResolveProjectSingleProject(t *testing.T) {
	t.Setenv(ProjectEnv, "")
	cfg, err := Parse([]byte("projects:\n  only:\n    base_url: https://only.test\n"))
	require.NoError(t, err)

	name, _, err := cfg.ResolveProject("")
	require.NoError(t, err)
	assert.Equal(t, "only", name)

	cfg.Projects["other"] = &Project{}
	_, _, err = cfg.ResolveProject("")
	assert.ErrorContains(t, err, "no project selected")
}

func TestCandidatesKeepOrder(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	got, err := cfg.Projects["github"].Candidates("username")
	require.NoError(t, err)
	assert.Equal(t, []locator.Locator{
		locator.ByID("UserName"),
		locator.ByName("login"),
		locator.ByCSS("input[name='login']"),
	}, got)

	_, err = cfg.Projects["github"].Candidates("nope")
	assert.ErrorContains(t, err, `element "nope" is not defined`)
}

func TestSelect(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)
	gh := cfg.Projects["github"]

	names := func(elements []Element) []string {
		var out []string
		for _, e := range elements {
			out = append(out, e.Name)
		}
		return out
	}

	all, err := gh.Select(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"login_button", "password", "username"}, names(all))

	some, err := gh.Select([]string{"login_*", "user*"})
	require.NoError(t, err)
	assert.Equal(t, []string{"login_button", "username"}, names(some))

	none, err := gh.Select([]string{"checkout*"})
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = gh.Select([]string{"[unclosed"})
	assert.ErrorContains(t, err, "invalid element pattern")
}

func TestSessionOptions(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	opts := cfg.Projects["github"].SessionOptions()
	assert.Equal(t, playwright.SessionOptions{
		Browser:  "firefox",
		Headless: false,
		Viewport: &playwright.Viewport{Width: 1280, Height: 720},
		Timeout:  15000,
		BaseURL:  "https://github.com/login",
	}, opts)

	assert.Nil(t, cfg.Projects["reimbursement"].SessionOptions().Viewport)
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("SMARTFIND_TEST_FROM_FILE=file\nSMARTFIND_TEST_PRESET=file\n"), 0o644))

	t.Setenv("SMARTFIND_TEST_PRESET", "env")
	t.Setenv("SMARTFIND_TEST_FROM_FILE", "")
	os.Unsetenv("SMARTFIND_TEST_FROM_FILE")

	require.NoError(t, LoadEnv(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "file", os.Getenv("SMARTFIND_TEST_FROM_FILE"))
	assert.Equal(t, "env", os.Getenv("SMARTFIND_TEST_PRESET"), "existing variables win")
}

func TestBuildProvider(t *testing.T) {
	tests := []struct {
		name        string
		cli         LLMOverrides
		envAPIKey   string
		fileAPIKey  string
		fileModel   string
		wantModel   string
		wantAPIKey  string
		wantMissing bool
	}{
		{
			name:       "CLI flag takes precedence over env",
			cli:        LLMOverrides{Model: "gpt-4", APIKey: "cli-key"},
			envAPIKey:  "env-key",
			fileAPIKey: "file-key",
			wantModel:  "gpt-4",
			wantAPIKey: "cli-key",
		},
		{
			name:       "environment beats file",
			envAPIKey:  "env-key",
			fileAPIKey: "file-key",
			fileModel:  "gpt-4o-mini",
			wantModel:  "gpt-4o-mini",
			wantAPIKey: "env-key",
		},
		{
			name:       "file key used last",
			fileAPIKey: "file-key",
			wantModel:  DefaultModel,
			wantAPIKey: "file-key",
		},
		{
			name:        "missing key",
			wantMissing: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("OPENAI_API_KEY", tt.envAPIKey)
			t.Setenv("OPENAI_BASE_URL", "")

			cfg := DefaultConfig()
			cfg.LLM.APIKey = tt.fileAPIKey
			if tt.fileModel != "" {
				cfg.LLM.Model = tt.fileModel
			}

			provider, err := cfg.BuildProvider(tt.cli)
			if tt.wantMissing {
				assert.True(t, errors.Is(err, suggest.ErrMissingAPIKey))
				assert.Nil(t, provider)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantModel, provider.GetModel())
			assert.Equal(t, tt.wantAPIKey, provider.GetAPIKey())
		})
	}
}

func TestBuildProviderBaseURL(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "k")
	t.Setenv("OPENAI_BASE_URL", "https://env.example.test/v1")

	cfg := DefaultConfig()
	cfg.LLM.BaseURL = "https://file.example.test/v1"

	provider, err := cfg.BuildProvider(LLMOverrides{})
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.test/v1", provider.GetBaseURL())

	provider, err = cfg.BuildProvider(LLMOverrides{BaseURL: "https://cli.example.test/v1"})
	require.NoError(t, err)
	assert.Equal(t, "https://cli.example.test/v1", provider.GetBaseURL())
}

func TestExampleConfigIsValid(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "smartfind.example.yaml"))
	require.NoError(t, err)

	candidates, err := cfg.Projects["github"].Candidates("login_button")
	require.NoError(t, err)
	assert.Equal(t, locator.ByCSS("input[type='submit']"), candidates[2])
	assert.Equal(t, 30*time.Second, cfg.LLM.SuggestTimeout)
}
