package markdown

import (
	"strings"
	"testing"
)

func TestRenderPost(t *testing.T) {
	html, err := RenderPost("**bold** <script>alert(1)</script> http://example.com")
	if err != nil {
		t.Fatalf("RenderPost: %v", err)
	}

	if !strings.Contains(html, "<strong>bold</strong>") {
		t.Errorf("markdown emphasis not rendered: %s", html)
	}
	if strings.Contains(html, "<script>") {
		t.Errorf("script tag survived sanitization: %s", html)
	}
	if !strings.Contains(html, `href="http://example.com"`) {
		t.Errorf("bare URL not auto-linked: %s", html)
	}
}

func TestRenderPost_AllowsBlockElements(t *testing.T) {
	html, err := RenderPost("# Heading\n\n> quote\n\n- item one\n- item two")
	if err != nil {
		t.Fatalf("RenderPost: %v", err)
	}

	for _, tag := range []string{"<h1>", "<blockquote>", "<ul>", "<li>"} {
		if !strings.Contains(html, tag) {
			t.Errorf("expected %s in post HTML: %s", tag, html)
		}
	}
}

func TestRenderPost_StripsEventHandlers(t *testing.T) {
	html, err := RenderPost(`<p onclick="alert(1)">hi</p> <a href="javascript:alert(1)">x</a>`)
	if err != nil {
		t.Fatalf("RenderPost: %v", err)
	}
	if strings.Contains(html, "onclick") {
		t.Errorf("event handler survived: %s", html)
	}
	if strings.Contains(html, "javascript:") {
		t.Errorf("javascript URL survived: %s", html)
	}
}

func TestRenderComment_InlineOnly(t *testing.T) {
	html, err := RenderComment("# Heading\n\n**bold** and `code`")
	if err != nil {
		t.Fatalf("RenderComment: %v", err)
	}

	if strings.Contains(html, "<h1>") {
		t.Errorf("heading tag should be stripped from comments: %s", html)
	}
	if !strings.Contains(html, "Heading") {
		t.Errorf("heading text should be kept: %s", html)
	}
	if !strings.Contains(html, "<strong>bold</strong>") {
		t.Errorf("inline markup should survive: %s", html)
	}
	if !strings.Contains(html, "<code>code</code>") {
		t.Errorf("code span should survive: %s", html)
	}
}

func TestRenderComment_Sanitizes(t *testing.T) {
	html, err := RenderComment(`<img src=x onerror=alert(1)> plain`)
	if err != nil {
		t.Fatalf("RenderComment: %v", err)
	}
	if strings.Contains(html, "<img") {
		t.Errorf("img tag survived in comment: %s", html)
	}
}

func TestRenderPost_Empty(t *testing.T) {
	html, err := RenderPost("")
	if err != nil {
		t.Fatalf("RenderPost: %v", err)
	}
	if strings.TrimSpace(html) != "" {
		t.Errorf("empty input should yield empty output, got %q", html)
	}
}
