// Package locator defines how a UI element is identified on a page.
//
// A Locator pairs a lookup Strategy with the value the strategy interprets.
// Locators are plain values: they compare with ==, and their String form is
// stable enough to be used as a diagnostic or log key.
//
// A Locator must not be used as a cache key for resolved elements. The same
// locator can match a different element (or none) after the page changes.
package locator

import (
	"fmt"
	"strings"
)

// Strategy identifies how a locator value is interpreted.
type Strategy int

const (
	// ID matches the element's id attribute.
	ID Strategy = iota + 1
	// Name matches the element's name attribute.
	Name
	// CSS is a CSS selector.
	CSS
	// XPath is an XPath expression.
	XPath
	// ClassName matches a single class in the element's class list.
	ClassName
	// TagName matches the element's tag.
	TagName
	// LinkText matches an anchor whose visible text equals the value.
	LinkText
	// PartialLinkText matches an anchor whose visible text contains the value.
	PartialLinkText
)

var strategyNames = map[Strategy]string{
	ID:              "Id",
	Name:            "Name",
	CSS:             "Css",
	XPath:           "XPath",
	ClassName:       "ClassName",
	TagName:         "TagName",
	LinkText:        "LinkText",
	PartialLinkText: "PartialLinkText",
}

// aliases maps lower-cased strategy spellings to strategies. It covers the
// canonical names plus the short names used in page-object definitions.
var aliases = map[string]Strategy{
	"id":              ID,
	"name":            Name,
	"css":             CSS,
	"cssselector":     CSS,
	"xpath":           XPath,
	"class":           ClassName,
	"classname":       ClassName,
	"tag":             TagName,
	"tagname":         TagName,
	"linktext":        LinkText,
	"link":            LinkText,
	"partiallinktext": PartialLinkText,
	"partiallink":     PartialLinkText,
}

// String returns the canonical strategy name.
func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// Valid reports whether s is one of the defined strategies.
func (s Strategy) Valid() bool {
	_, ok := strategyNames[s]
	return ok
}

// ParseStrategy resolves a strategy name. Matching is case-insensitive and
// ignores '-' and '_' so "partial_link_text" and "partialLinkText" agree.
func ParseStrategy(name string) (Strategy, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.NewReplacer("-", "", "_", "", " ", "").Replace(key)
	if s, ok := aliases[key]; ok {
		return s, nil
	}
	return 0, fmt.Errorf("unsupported locator type: %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("unsupported locator type: %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Locator is an immutable (strategy, value) pair.
type Locator struct {
	strategy Strategy
	value    string
}

// New builds a Locator from a strategy name such as "id", "css" or
// "partialLinkText". Unknown names are rejected.
func New(strategy, value string) (Locator, error) {
	s, err := ParseStrategy(strategy)
	if err != nil {
		return Locator{}, err
	}
	return Locator{strategy: s, value: value}, nil
}

// Of builds a Locator from an already-typed strategy.
func Of(s Strategy, value string) Locator {
	return Locator{strategy: s, value: value}
}

// ByID returns an ID locator.
func ByID(value string) Locator { return Of(ID, value) }

// ByName returns a Name locator.
func ByName(value string) Locator { return Of(Name, value) }

// ByCSS returns a CSS locator.
func ByCSS(value string) Locator { return Of(CSS, value) }

// ByXPath returns an XPath locator.
func ByXPath(value string) Locator { return Of(XPath, value) }

// ByClassName returns a ClassName locator.
func ByClassName(value string) Locator { return Of(ClassName, value) }

// ByTagName returns a TagName locator.
func ByTagName(value string) Locator { return Of(TagName, value) }

// ByLinkText returns a LinkText locator.
func ByLinkText(value string) Locator { return Of(LinkText, value) }

// ByPartialLinkText returns a PartialLinkText locator.
func ByPartialLinkText(value string) Locator { return Of(PartialLinkText, value) }

// Strategy returns the lookup strategy.
func (l Locator) Strategy() Strategy { return l.strategy }

// Value returns the strategy-specific value.
func (l Locator) Value() string { return l.value }

// IsZero reports whether l was never constructed.
func (l Locator) IsZero() bool { return l.strategy == 0 && l.value == "" }

// String renders the locator as <strategy>='<value>'.
func (l Locator) String() string {
	return fmt.Sprintf("%s='%s'", l.strategy, l.value)
}

// Join renders a candidate list as a comma separated string of locators.
func Join(locators []Locator) string {
	parts := make([]string, len(locators))
	for i, l := range locators {
		parts[i] = l.String()
	}
	return strings.Join(parts, ", ")
}
