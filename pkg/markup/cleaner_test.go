package markup

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/smartfind/pkg/types"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		maxChars  int
		wantTitle string
		wantDesc  string
		wantHTML  []string
		wantNot   []string
		truncated bool
	}{
		{
			name: "drops head, scripts and styles",
			input: `<html>
				<head>
					<title>Sign in</title>
					<meta name="description" content="Login page">
					<script>alert('evil');</script>
					<style>body { color: red; }</style>
				</head>
				<body>
					<h1 id="main-title">Welcome</h1>
					<!-- login form -->
					<p class="intro">Please sign in.</p>
				</body>
			</html>`,
			wantTitle: "Sign in",
			wantDesc:  "Login page",
			wantHTML:  []string{`<h1 id="main-title">`, "Welcome", `<p class="intro">`, "Please sign in."},
			wantNot:   []string{"<script>", "alert", "<style>", "color: red", "login form", "<title>", "<meta"},
		},
		{
			name: "keeps targeting attributes",
			input: `<html><body>
				<form action="/session" method="post" onsubmit="track()">
					<label for="login_field">Username</label>
					<input type="text" name="login" id="login_field" placeholder="Enter name" data-test="username" aria-label="Username" style="width:100%">
					<input type="submit" name="commit" value="Sign in" class="btn btn-primary">
				</form>
			</body></html>`,
			wantHTML: []string{
				`<form action="/session" method="post">`,
				`<label for="login_field">`,
				`name="login"`,
				`id="login_field"`,
				`placeholder="Enter name"`,
				`data-test="username"`,
				`aria-label="Username"`,
				`value="Sign in"`,
				`class="btn btn-primary"`,
			},
			wantNot: []string{"onsubmit", "style=", "</input>"},
		},
		{
			name: "removes embedded content",
			input: `<html><body>
				<div>Content</div>
				<noscript>No JS</noscript>
				<iframe src="ad.html"></iframe>
				<svg><circle/></svg>
				<template><p>hidden</p></template>
			</body></html>`,
			wantHTML: []string{"<div>", "Content"},
			wantNot:  []string{"<noscript>", "No JS", "<iframe", "<svg>", "hidden"},
		},
		{
			name: "escapes text and attribute values",
			input: `<html><body>
				<a href="/q?a=1&b=2" title="say &quot;hi&quot;">Tom &amp; Jerry</a>
			</body></html>`,
			wantHTML: []string{`href="/q?a=1&amp;b=2"`, `title="say &#34;hi&#34;"`, "Tom &amp; Jerry"},
		},
		{
			name: "truncates text at the cap",
			input: `<html><body>
				<p>First paragraph with some content.</p>
				<p>Second paragraph with more content.</p>
				<p>Third paragraph that should be truncated.</p>
			</body></html>`,
			maxChars:  100,
			wantHTML:  []string{"First paragraph", "..."},
			wantNot:   []string{"Third paragraph"},
			truncated: true,
		},
		{
			name: "no cap when zero",
			input: `<html><body>
				<p>` + strings.Repeat("word ", 200) + `</p>
			</body></html>`,
			wantHTML: []string{"word word"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Clean(tt.input, tt.maxChars)
			require.NoError(t, err)

			assert.Equal(t, tt.wantTitle, result.Title)
			assert.Equal(t, tt.wantDesc, result.Description)
			assert.Equal(t, tt.truncated, result.Truncated)

			for _, want := range tt.wantHTML {
				assert.Contains(t, result.HTML, want)
			}
			for _, notWant := range tt.wantNot {
				assert.NotContains(t, result.HTML, notWant)
			}
		})
	}
}

func TestCleanVoidElements(t *testing.T) {
	result, err := Clean(`<body><img src="a.png" alt="Logo"><br><input type="text" name="q"><hr></body>`, 0)
	require.NoError(t, err)

	assert.Contains(t, result.HTML, `<img src="a.png" alt="Logo">`)
	assert.Contains(t, result.HTML, `<input type="text" name="q">`)
	for _, closing := range []string{"</img>", "</br>", "</input>", "</hr>"} {
		assert.NotContains(t, result.HTML, closing)
	}
}

func TestCleanTruncationRespectsRunes(t *testing.T) {
	result, err := Clean(`<body><p>`+strings.Repeat("é", 100)+`</p></body>`, 40)
	require.NoError(t, err)

	assert.True(t, result.Truncated)
	assert.Contains(t, result.HTML, "...")
	assert.True(t, utf8.ValidString(result.HTML), "output must stay valid UTF-8")
}

func TestApproximateTokens(t *testing.T) {
	var tok *Tokenizer

	assert.Equal(t, 0, tok.CountTokens(""))
	assert.Equal(t, 1, tok.CountTokens("abcd"))
	assert.Equal(t, 2, tok.CountTokens("abcde"))

	msgs := []*types.Message{
		types.NewSystemMessage("abcd"),
		types.NewUserMessage("abcd"),
	}
	// priming + framing + role + content per message
	assert.Equal(t, 3+(4+2+1)+(4+1+1), tok.CountMessagesTokens(msgs))
}
