// Package types holds the message types exchanged with LLM providers.
package types

// MessageRole identifies the author of a chat message.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"    // RoleSystem carries instructions for the model.
	RoleUser      MessageRole = "user"      // RoleUser carries the request.
	RoleAssistant MessageRole = "assistant" // RoleAssistant carries the model's reply.
)

// Message is a single chat message.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// NewSystemMessage creates a system message.
func NewSystemMessage(content string) *Message {
	return &Message{Role: RoleSystem, Content: content}
}

// NewUserMessage creates a user message.
func NewUserMessage(content string) *Message {
	return &Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates an assistant message.
func NewAssistantMessage(content string) *Message {
	return &Message{Role: RoleAssistant, Content: content}
}

// ModelInfo describes the model behind a provider.
type ModelInfo struct {
	Name              string                 `json:"name"`
	Provider          string                 `json:"provider"`
	MaxTokens         int                    `json:"max_tokens"`
	SupportsStreaming bool                   `json:"supports_streaming"`
	Metadata          map[string]interface{} `json:"metadata,omitempty"`
}
