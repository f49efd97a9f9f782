// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"strings"
	"testing"
)

func TestRenderSummary(t *testing.T) {
	html, err := RenderSummary("# Hello\n\nSome **bold** text.")
	if err != nil {
		t.Fatalf("RenderSummary: %v", err)
	}
	if !strings.Contains(html, "<h1") {
		t.Errorf("missing heading in %q", html)
	}
	if !strings.Contains(html, "<strong>bold</strong>") {
		t.Errorf("missing bold in %q", html)
	}
}

func TestRenderSummaryStripsScripts(t *testing.T) {
	html, err := RenderSummary("Hello <script>alert(1)</script> world")
	if err != nil {
		t.Fatalf("RenderSummary: %v", err)
	}
	if strings.Contains(html, "<script") {
		t.Errorf("script survived sanitization: %q", html)
	}
	if !strings.Contains(html, "Hello") {
		t.Errorf("content lost: %q", html)
	}
}

func TestRenderSummaryStripsEventHandlers(t *testing.T) {
	html, err := RenderSummary(`<a href="/x" onclick="evil()">link</a>`)
	if err != nil {
		t.Fatalf("RenderSummary: %v", err)
	}
	if strings.Contains(html, "onclick") {
		t.Errorf("event handler survived sanitization: %q", html)
	}
}
