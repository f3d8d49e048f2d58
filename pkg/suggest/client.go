// Package suggest asks a language model for a replacement locator when every
// candidate locator of an element has failed, parses the answer, and keeps an
// append-only audit log of the suggestions it obtained.
package suggest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/entrhq/smartfind/pkg/llm"
	"github.com/entrhq/smartfind/pkg/llm/parser"
	"github.com/entrhq/smartfind/pkg/logging"
	"github.com/entrhq/smartfind/pkg/types"
)

const systemInstruction = "You are a browser test assistant."

const promptTemplate = `A browser test failed using this locator: %s

Here is the current page markup:
%s

Suggest a working XPath or CSS selector for the element the failed locator was meant to find.
Only return the locator string. No explanation.`

// ErrMissingAPIKey is returned by Validate when the client has no credential
// to call the suggestion service with.
var ErrMissingAPIKey = errors.New("suggestion service API key is not configured")

// ServiceError reports a failed suggestion request: transport failure,
// rejected credentials, or a response without usable text.
type ServiceError struct {
	// Auth is set when the service rejected the credentials.
	Auth bool
	Err  error
}

func (e *ServiceError) Error() string {
	if e.Auth {
		return fmt.Sprintf("suggestion service rejected credentials: %v", e.Err)
	}
	return fmt.Sprintf("suggestion service request failed: %v", e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// TokenCounter estimates the prompt size of a request before it is sent.
type TokenCounter interface {
	CountMessagesTokens(messages []*types.Message) int
}

// Client obtains locator suggestions from an LLM provider. It makes exactly
// one request per Suggest call and never retries.
type Client struct {
	provider llm.Provider
	timeout  time.Duration
	tokens   TokenCounter
	logger   *logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds each suggestion round trip. Zero leaves it unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithTokenCounter logs the estimated prompt size of every request.
func WithTokenCounter(counter TokenCounter) Option {
	return func(c *Client) {
		c.tokens = counter
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *logging.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a suggestion client. A nil provider yields a client whose
// Validate reports ErrMissingAPIKey.
func NewClient(provider llm.Provider, opts ...Option) *Client {
	c := &Client{provider: provider}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.Discard("suggest")
	}
	return c
}

// Validate reports whether the client has the credential it needs. It never
// touches the network.
func (c *Client) Validate() error {
	if c == nil || c.provider == nil || strings.TrimSpace(c.provider.GetAPIKey()) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// Suggest asks the service for a locator that finds the element failedLocator
// was meant to find on the page described by markup. The returned text is the
// first completion with reasoning blocks, code fences and surrounding
// whitespace removed.
func (c *Client) Suggest(ctx context.Context, failedLocator, markup string) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	messages := BuildMessages(failedLocator, markup)
	if c.tokens != nil {
		c.logger.Debugf("requesting suggestion for %s from %s (~%d prompt tokens)",
			failedLocator, c.provider.GetModel(), c.tokens.CountMessagesTokens(messages))
	}

	reply, err := c.provider.Complete(ctx, messages)
	if err != nil {
		return "", &ServiceError{Auth: errors.Is(err, llm.ErrAuthentication), Err: err}
	}
	if reply == nil {
		return "", &ServiceError{Err: llm.ErrEmptyResponse}
	}

	_, answer := parser.Split(reply.Content)
	answer = stripCodeFence(strings.TrimSpace(answer))
	if answer == "" {
		return "", &ServiceError{Err: llm.ErrEmptyResponse}
	}
	return answer, nil
}

// BuildMessages renders the request sent for one failed locator.
func BuildMessages(failedLocator, markup string) []*types.Message {
	return []*types.Message{
		types.NewSystemMessage(systemInstruction),
		types.NewUserMessage(fmt.Sprintf(promptTemplate, failedLocator, markup)),
	}
}

// stripCodeFence unwraps an answer the model put in a fenced code block.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	body := strings.TrimSuffix(strings.TrimPrefix(s, "```"), "```")
	// Drop a language tag on the opening fence line
	if nl := strings.IndexByte(body, '\n'); nl >= 0 && !strings.ContainsAny(body[:nl], " \t") {
		body = body[nl+1:]
	}
	return strings.TrimSpace(body)
}
