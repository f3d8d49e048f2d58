package suggest

import (
	"fmt"
	"strings"

	"github.com/entrhq/smartfind/pkg/locator"
)

// UnparsableError is returned when suggestion text matches none of the
// classification rules.
type UnparsableError struct {
	Raw string
}

func (e *UnparsableError) Error() string {
	return fmt.Sprintf("unparsable locator suggestion: %q", e.Raw)
}

// ParseSuggestion classifies free-form suggestion text as an XPath or CSS
// locator.
//
// The text is trimmed and surrounding quote characters are removed.
// Text mentioning "xpath" or starting with "//" is XPath. Otherwise text
// mentioning "css", or containing '#', '.', or a [...] attribute bracket, is
// CSS. Anything else is an *UnparsableError. The expression itself is not
// validated; a bad one fails at the next lookup.
func ParseSuggestion(raw string) (locator.Locator, error) {
	text := strings.TrimSpace(unquote(strings.TrimSpace(raw)))
	lower := strings.ToLower(text)

	switch {
	case text == "":
		return locator.Locator{}, &UnparsableError{Raw: raw}
	case strings.Contains(lower, "xpath") || strings.HasPrefix(text, "//"):
		return locator.ByXPath(stripEnginePrefix(text, "xpath=")), nil
	case strings.Contains(lower, "css") || strings.ContainsAny(text, "#.") || hasAttributeBracket(text):
		return locator.ByCSS(stripEnginePrefix(text, "css=")), nil
	default:
		return locator.Locator{}, &UnparsableError{Raw: raw}
	}
}

func unquote(s string) string {
	return strings.Trim(s, "\"'`")
}

func hasAttributeBracket(s string) bool {
	open := strings.IndexByte(s, '[')
	return open >= 0 && strings.IndexByte(s[open:], ']') > 0
}

// stripEnginePrefix removes a leading "xpath=" or "css=" so the value is a
// bare expression.
func stripEnginePrefix(s, prefix string) string {
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return strings.TrimSpace(s[len(prefix):])
	}
	return s
}
