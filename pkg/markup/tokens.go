package markup

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/entrhq/smartfind/pkg/types"
)

const defaultEncoding = "cl100k_base"

// Tokenizer counts prompt tokens with the encoding of the target model.
type Tokenizer struct {
	encoding *tiktoken.Tiktoken
	name     string
}

// NewTokenizer returns a tokenizer for model. Models unknown to tiktoken fall
// back to cl100k_base.
func NewTokenizer(model string) (*Tokenizer, error) {
	if model != "" {
		if enc, err := tiktoken.EncodingForModel(model); err == nil {
			return &Tokenizer{encoding: enc, name: model}, nil
		}
	}

	enc, err := tiktoken.GetEncoding(defaultEncoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s encoding: %w", defaultEncoding, err)
	}
	return &Tokenizer{encoding: enc, name: defaultEncoding}, nil
}

// Name returns the model or encoding the tokenizer was built for.
func (t *Tokenizer) Name() string {
	return t.name
}

// CountTokens returns the number of tokens in text.
func (t *Tokenizer) CountTokens(text string) int {
	if t == nil || t.encoding == nil {
		return approximateTokens(text)
	}
	return len(t.encoding.Encode(text, nil, nil))
}

// CountMessagesTokens estimates the prompt size of a chat request, including
// the per-message framing overhead of the chat format.
func (t *Tokenizer) CountMessagesTokens(messages []*types.Message) int {
	const perMessage, priming = 4, 3

	total := priming
	for _, msg := range messages {
		if msg == nil {
			continue
		}
		total += perMessage + t.CountTokens(string(msg.Role)) + t.CountTokens(msg.Content)
	}
	return total
}

// approximateTokens is the usual four characters per token estimate.
func approximateTokens(text string) int {
	return (len(text) + 3) / 4
}
