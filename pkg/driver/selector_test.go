package driver

import (
	"errors"
	"fmt"
	"testing"

	"github.com/entrhq/smartfind/pkg/locator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name     string
		loc      locator.Locator
		wantKind SelectorKind
		wantExpr string
	}{
		{"id", locator.ByID("user"), KindCSS, `[id="user"]`},
		{"name", locator.ByName("login"), KindCSS, `[name="login"]`},
		{"css passthrough", locator.ByCSS("input[type='submit']"), KindCSS, "input[type='submit']"},
		{"xpath passthrough", locator.ByXPath("//div[@id='x']"), KindXPath, "//div[@id='x']"},
		{"class", locator.ByClassName("btn-primary"), KindCSS, `[class~="btn-primary"]`},
		{"tag", locator.ByTagName("form"), KindCSS, "form"},
		{"link text", locator.ByLinkText(" Sign in "), KindXPath, `//a[normalize-space(string(.))="Sign in"]`},
		{"partial link text", locator.ByPartialLinkText("Sign"), KindXPath, `//a[contains(string(.),"Sign")]`},
		{"id with quotes", locator.ByID(`a"b`), KindCSS, `[id="a\"b"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := Translate(tt.loc)
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, sel.Kind)
			assert.Equal(t, tt.wantExpr, sel.Expression)
		})
	}
}

func TestTranslateRejectsCompoundClass(t *testing.T) {
	_, err := Translate(locator.ByClassName("btn primary"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compound class names")
}

func TestTranslateRejectsZeroLocator(t *testing.T) {
	_, err := Translate(locator.Locator{})
	assert.Error(t, err)
}

func TestSelectorString(t *testing.T) {
	assert.Equal(t, "css=#a", Selector{KindCSS, "#a"}.String())
	assert.Equal(t, "xpath=//a", Selector{KindXPath, "//a"}.String())
}

func TestXPathString(t *testing.T) {
	assert.Equal(t, `"plain"`, xpathString("plain"))
	assert.Equal(t, `'say "hi"'`, xpathString(`say "hi"`))
	assert.Equal(t, `concat("it's ",'"',"x",'"')`, xpathString(`it's "x"`))
}

func TestNotFound(t *testing.T) {
	err := NotFound(locator.ByID("user"))
	assert.True(t, IsNotFound(err))
	assert.True(t, errors.Is(err, ErrNoSuchElement))
	assert.Equal(t, "no such element: Id='user'", err.Error())

	wrapped := fmt.Errorf("lookup: %w", err)
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsNotFound(errors.New("session closed")))
}

func TestIsSelectorSyntaxError(t *testing.T) {
	assert.True(t, IsSelectorSyntaxError(errors.New(`SyntaxError: Failed to execute 'querySelector' on 'Document': 'input[' is not a valid selector.`)))
	assert.True(t, IsSelectorSyntaxError(errors.New(`Failed to execute 'evaluate' on 'Document': The string '//a[' is not a valid XPath expression.`)))
	assert.True(t, IsSelectorSyntaxError(errors.New("Unexpected token \"]\" while parsing selector")))
	assert.False(t, IsSelectorSyntaxError(errors.New("Target page, context or browser has been closed")))
	assert.False(t, IsSelectorSyntaxError(nil))
}
