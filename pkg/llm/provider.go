// Package llm provides abstractions for LLM provider integration.
//
// Example usage:
//
//	provider, err := openai.NewProvider(
//	    os.Getenv("OPENAI_API_KEY"),
//	    openai.WithModel("gpt-4o"),
//	    openai.WithTemperature(0.5),
//	    openai.WithMaxTokens(150),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	reply, err := provider.Complete(ctx, []*types.Message{
//	    types.NewSystemMessage("You are a browser test assistant."),
//	    types.NewUserMessage("Suggest a selector for the login field."),
//	})
package llm

import (
	"context"
	"errors"

	"github.com/entrhq/smartfind/pkg/types"
)

// ErrAuthentication is wrapped by providers when the service rejects the
// credentials. It is never worth retrying.
var ErrAuthentication = errors.New("authentication failed")

// ErrEmptyResponse is returned when the service answers without any
// completion choices.
var ErrEmptyResponse = errors.New("response contained no completions")

// Provider defines the interface for LLM integrations.
//
// Providers handle API communication with LLM services. They make exactly
// one request per call; retry policy, if any, belongs to the caller.
type Provider interface {
	// Complete sends messages to the LLM and returns the first completion.
	Complete(ctx context.Context, messages []*types.Message) (*types.Message, error)

	// GetModelInfo returns information about the LLM model being used.
	GetModelInfo() *types.ModelInfo

	// GetModel returns the model name being used.
	GetModel() string

	// GetBaseURL returns the base URL being used for API requests.
	GetBaseURL() string

	// GetAPIKey returns the API key being used for authentication.
	GetAPIKey() string
}
