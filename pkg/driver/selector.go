package driver

import (
	"fmt"
	"strings"

	"github.com/entrhq/smartfind/pkg/locator"
)

// SelectorKind tells a driver which query engine a selector targets.
type SelectorKind int

const (
	// KindCSS is a CSS selector.
	KindCSS SelectorKind = iota
	// KindXPath is an XPath expression.
	KindXPath
)

// Selector is a locator translated into an expression a browser can run.
type Selector struct {
	Kind       SelectorKind
	Expression string
}

// String renders the selector with the engine prefix understood by
// Playwright ("css=" or "xpath=").
func (s Selector) String() string {
	if s.Kind == KindXPath {
		return "xpath=" + s.Expression
	}
	return "css=" + s.Expression
}

// Translate converts a locator into a CSS or XPath selector. Every strategy
// maps onto one of the two engines so drivers only need to support those.
func Translate(loc locator.Locator) (Selector, error) {
	v := loc.Value()
	switch loc.Strategy() {
	case locator.ID:
		return Selector{KindCSS, fmt.Sprintf("[id=%s]", cssString(v))}, nil
	case locator.Name:
		return Selector{KindCSS, fmt.Sprintf("[name=%s]", cssString(v))}, nil
	case locator.CSS:
		return Selector{KindCSS, v}, nil
	case locator.XPath:
		return Selector{KindXPath, v}, nil
	case locator.ClassName:
		if strings.ContainsAny(strings.TrimSpace(v), " \t\n") {
			return Selector{}, fmt.Errorf("compound class names are not permitted: %q", v)
		}
		return Selector{KindCSS, fmt.Sprintf("[class~=%s]", cssString(strings.TrimSpace(v)))}, nil
	case locator.TagName:
		return Selector{KindCSS, v}, nil
	case locator.LinkText:
		return Selector{KindXPath, fmt.Sprintf("//a[normalize-space(string(.))=%s]", xpathString(strings.TrimSpace(v)))}, nil
	case locator.PartialLinkText:
		return Selector{KindXPath, fmt.Sprintf("//a[contains(string(.),%s)]", xpathString(v))}, nil
	default:
		return Selector{}, fmt.Errorf("unsupported locator type: %s", loc.Strategy())
	}
}

// cssString quotes s as a CSS string literal.
func cssString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\a `)
	return `"` + r.Replace(s) + `"`
}

// xpathString quotes s as an XPath 1.0 string literal. XPath has no escape
// sequences, so values containing both quote kinds are built with concat().
func xpathString(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, `'`) {
		return `'` + s + `'`
	}
	parts := strings.Split(s, `"`)
	quoted := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `'"'`)
		}
		if p != "" {
			quoted = append(quoted, `"`+p+`"`)
		}
	}
	return "concat(" + strings.Join(quoted, ",") + ")"
}

// selectorSyntaxErrors are fragments of the messages browsers return for
// selectors they cannot parse.
var selectorSyntaxErrors = []string{
	"is not a valid selector",
	"is not a valid xpath expression",
	"unexpected token",
	"failed to parse",
	"unknown engine",
}

// IsSelectorSyntaxError reports whether err is a browser's rejection of a
// malformed selector, as opposed to a failure of the page or session.
func IsSelectorSyntaxError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, fragment := range selectorSyntaxErrors {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}
