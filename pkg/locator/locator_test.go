package locator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocatorString(t *testing.T) {
	tests := []struct {
		name     string
		locator  Locator
		expected string
	}{
		{"id", ByID("user"), "Id='user'"},
		{"name", ByName("login"), "Name='login'"},
		{"css", ByCSS("input[name='login']"), "Css='input[name='login']'"},
		{"xpath", ByXPath("//div[@id='x']"), "XPath='//div[@id='x']'"},
		{"class", ByClassName("btn"), "ClassName='btn'"},
		{"tag", ByTagName("form"), "TagName='form'"},
		{"link", ByLinkText("Sign in"), "LinkText='Sign in'"},
		{"partial link", ByPartialLinkText("Sign"), "PartialLinkText='Sign'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.locator.String())
		})
	}
}

func TestLocatorEquality(t *testing.T) {
	a := ByID("user")
	b, err := New("id", "user")
	require.NoError(t, err)

	assert.True(t, a == b)
	assert.False(t, a == ByName("user"))
	assert.False(t, a == ByID("other"))
}

func TestNew(t *testing.T) {
	tests := []struct {
		strategy string
		want     Strategy
	}{
		{"id", ID},
		{"ID", ID},
		{"name", Name},
		{"css", CSS},
		{"cssSelector", CSS},
		{"xpath", XPath},
		{"class", ClassName},
		{"className", ClassName},
		{"tag", TagName},
		{"linkText", LinkText},
		{"partialLinkText", PartialLinkText},
		{"partial_link_text", PartialLinkText},
	}

	for _, tt := range tests {
		t.Run(tt.strategy, func(t *testing.T) {
			loc, err := New(tt.strategy, "v")
			require.NoError(t, err)
			assert.Equal(t, tt.want, loc.Strategy())
			assert.Equal(t, "v", loc.Value())
		})
	}
}

func TestNewUnsupported(t *testing.T) {
	_, err := New("shadow", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported locator type")
}

func TestStrategyText(t *testing.T) {
	var s Strategy
	require.NoError(t, s.UnmarshalText([]byte("partialLinkText")))
	assert.Equal(t, PartialLinkText, s)

	text, err := XPath.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "XPath", string(text))

	_, err = Strategy(99).MarshalText()
	assert.Error(t, err)
	assert.Equal(t, "Strategy(99)", Strategy(99).String())
}

func TestZeroAndJoin(t *testing.T) {
	assert.True(t, Locator{}.IsZero())
	assert.False(t, ByID("").IsZero())

	joined := Join([]Locator{ByID("user"), ByName("login")})
	assert.Equal(t, "Id='user', Name='login'", joined)
}
