// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package markdown derives sanitized HTML from Markdown source.
//
// Posts and comments store both the raw Markdown and the derived HTML;
// the derivation here is the only path that produces the stored HTML.
// Bare URLs are auto-linked before sanitization, and each content kind
// has its own tag allowlist: comments are restricted to inline markup.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var converter = goldmark.New(
	goldmark.WithExtensions(extension.Linkify),
)

// postPolicy allows block-level structure in posts.
var postPolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"a", "abbr", "acronym", "b", "blockquote", "code", "em", "i",
		"li", "ol", "pre", "strong", "ul", "h1", "h2", "h3", "p",
	)
	p.AllowAttrs("href", "title").OnElements("a")
	p.AllowStandardURLs()
	return p
}()

// commentPolicy allows inline markup only. Anything block-level is
// stripped, its text content kept.
var commentPolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("a", "abbr", "acronym", "b", "code", "em", "i", "strong")
	p.AllowAttrs("href", "title").OnElements("a")
	p.AllowStandardURLs()
	return p
}()

// RenderPost converts post Markdown to sanitized HTML.
func RenderPost(body string) (string, error) {
	return render(body, postPolicy)
}

// RenderComment converts comment Markdown to sanitized HTML.
func RenderComment(body string) (string, error) {
	return render(body, commentPolicy)
}

func render(body string, policy *bluemonday.Policy) (string, error) {
	var buf bytes.Buffer
	if err := converter.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return policy.Sanitize(buf.String()), nil
}
