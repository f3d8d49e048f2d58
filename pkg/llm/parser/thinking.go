// Package parser provides utilities for separating model reasoning from the
// answer text in LLM responses.
package parser

import (
	"strings"
)

// thinkingTags are the opening/closing tag pairs treated as reasoning blocks.
var thinkingTags = map[string]string{
	"<thinking>": "</thinking>",
	"<think>":    "</think>",
}

// ThinkingParser separates <thinking> (or <think>) blocks from regular
// content. It keeps state across calls so tags that span chunk boundaries
// are handled.
type ThinkingParser struct {
	buffer     strings.Builder
	tagBuffer  strings.Builder // Buffer for potential tag content between < and >
	closingTag string          // closing tag expected while inside a thinking block
	inTag      bool            // true when we're buffering a potential tag (saw '<' but not yet '>')
	thinking   strings.Builder
	message    strings.Builder
}

// NewThinkingParser creates a new thinking parser.
func NewThinkingParser() *ThinkingParser {
	return &ThinkingParser{}
}

// Parse processes a content chunk and returns the thinking and message
// text found in it. Text inside an unfinished tag is held back until the
// tag completes or Flush is called.
func (p *ThinkingParser) Parse(content string) (thinking, message string) {
	for _, ch := range content {
		if ch == '<' {
			// A second '<' means the previous one did not open a tag
			if p.inTag {
				p.emit(p.tagBuffer.String())
				p.tagBuffer.Reset()
			}
			p.emit(p.buffer.String())
			p.buffer.Reset()

			p.inTag = true
			p.tagBuffer.WriteRune(ch)
			continue
		}

		if ch == '>' && p.inTag {
			p.tagBuffer.WriteRune(ch)
			tag := p.tagBuffer.String()
			p.tagBuffer.Reset()
			p.inTag = false

			lower := strings.ToLower(tag)
			if !p.IsInThinking() {
				if closing, ok := thinkingTags[lower]; ok {
					p.closingTag = closing
					continue
				}
			} else if lower == p.closingTag {
				p.closingTag = ""
				continue
			}

			p.emit(tag)
			continue
		}

		if p.inTag {
			p.tagBuffer.WriteRune(ch)
		} else {
			p.buffer.WriteRune(ch)
		}
	}

	p.emit(p.buffer.String())
	p.buffer.Reset()

	return p.drain()
}

// emit routes text to the thinking or message accumulator based on state.
func (p *ThinkingParser) emit(text string) {
	if text == "" {
		return
	}
	if p.IsInThinking() {
		p.thinking.WriteString(text)
		return
	}
	p.message.WriteString(text)
}

// drain returns and clears the accumulated output.
func (p *ThinkingParser) drain() (thinking, message string) {
	thinking, message = p.thinking.String(), p.message.String()
	p.thinking.Reset()
	p.message.Reset()
	return thinking, message
}

// IsInThinking returns true if currently parsing thinking content.
func (p *ThinkingParser) IsInThinking() bool {
	return p.closingTag != ""
}

// Flush returns any buffered content that hasn't been emitted yet.
// This should be called at the end of a stream to ensure all content is processed.
func (p *ThinkingParser) Flush() (thinking, message string) {
	if p.inTag {
		p.emit(p.tagBuffer.String())
		p.tagBuffer.Reset()
		p.inTag = false
	}
	p.emit(p.buffer.String())
	p.buffer.Reset()
	return p.drain()
}

// Reset resets the parser state for a new stream.
func (p *ThinkingParser) Reset() {
	p.buffer.Reset()
	p.tagBuffer.Reset()
	p.thinking.Reset()
	p.message.Reset()
	p.closingTag = ""
	p.inTag = false
}

// Split separates a complete response into its thinking and message parts.
func Split(content string) (thinking, message string) {
	p := NewThinkingParser()
	t1, m1 := p.Parse(content)
	t2, m2 := p.Flush()
	return t1 + t2, m1 + m2
}
