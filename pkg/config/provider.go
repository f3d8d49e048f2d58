package config

import (
	"fmt"
	"os"

	"github.com/entrhq/smartfind/pkg/llm/openai"
	"github.com/entrhq/smartfind/pkg/suggest"
)

// LLMOverrides are the suggestion service settings given on the command line.
type LLMOverrides struct {
	Model   string
	BaseURL string
	APIKey  string
}

// BuildProvider creates the suggestion service provider based on
// configuration precedence: CLI flags > environment variables > config
// file > defaults.
//
// A missing API key yields suggest.ErrMissingAPIKey so callers can still run
// with healing reported as misconfigured.
func (c *Config) BuildProvider(cli LLMOverrides) (*openai.Provider, error) {
	finalModel := cli.Model
	finalBaseURL := cli.BaseURL
	finalAPIKey := cli.APIKey

	if finalAPIKey == "" {
		finalAPIKey = os.Getenv("OPENAI_API_KEY")
	}
	if finalBaseURL == "" {
		finalBaseURL = os.Getenv("OPENAI_BASE_URL")
	}

	if finalModel == "" {
		finalModel = c.LLM.Model
	}
	if finalBaseURL == "" {
		finalBaseURL = c.LLM.BaseURL
	}
	if finalAPIKey == "" {
		finalAPIKey = c.LLM.APIKey
	}

	if finalModel == "" {
		finalModel = DefaultModel
	}

	if finalAPIKey == "" {
		return nil, fmt.Errorf("%w: set OPENAI_API_KEY, use -api-key, or configure llm.api_key in %s",
			suggest.ErrMissingAPIKey, DefaultFileName)
	}

	providerOpts := []openai.ProviderOption{
		openai.WithModel(finalModel),
		openai.WithTemperature(c.LLM.Temperature),
		openai.WithMaxTokens(c.LLM.MaxTokens),
	}
	if finalBaseURL != "" {
		providerOpts = append(providerOpts, openai.WithBaseURL(finalBaseURL))
	}

	provider, err := openai.NewProvider(finalAPIKey, providerOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}
	return provider, nil
}
