package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPatterns(t *testing.T) {
	c := &CLIConfig{Match: " login*, ,username "}
	assert.Equal(t, []string{"login*", "username"}, c.Patterns())

	assert.Empty(t, (&CLIConfig{}).Patterns())
}

func TestOutcomeRows(t *testing.T) {
	rows := outcomeRows([]outcome{
		{Element: "username", Kind: "resolved", Locator: "Name='login'", Worker: "worker-1", Duration: 1500 * time.Microsecond},
		{Element: "password", Kind: "resolved", Locator: "XPath='//input'", Healed: true, Worker: "worker-2"},
		{Element: "submit", Kind: "not found", Worker: "worker-1", Error: "element not found"},
	})

	assert.Equal(t, [][]string{
		{"element", "outcome", "locator", "worker", "duration"},
		{"username", "resolved", "Name='login'", "worker-1", "2ms"},
		{"password", "healed", "XPath='//input'", "worker-2", "0s"},
		{"submit", "not found", "", "worker-1", "0s"},
	}, rows)
}

func TestRenderOutcomes(t *testing.T) {
	out := renderOutcomes("github", []outcome{
		{Element: "username", Kind: "resolved", Locator: "Name='login'", Worker: "worker-1"},
		{Element: "password", Kind: "resolved", Locator: "XPath='//input'", Healed: true, Worker: "worker-1"},
		{Element: "submit", Kind: "not found", Worker: "worker-1", Error: "element not found: Id='btnLogin'"},
	})

	assert.Contains(t, out, "smartfind: github")
	assert.Contains(t, out, "username")
	assert.Contains(t, out, "healed")
	assert.Contains(t, out, "submit: element not found: Id='btnLogin'")
	assert.Contains(t, out, "1 resolved  1 healed  1 failed")
}
