// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

// htmlSanitizer strips dangerous markup from rendered summaries. UGCPolicy
// allows the safe subset suitable for staff-authored content.
var htmlSanitizer = bluemonday.UGCPolicy()

// RenderSummary converts a case summary written in Markdown into sanitized
// HTML.
func RenderSummary(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("rendering summary: %w", err)
	}
	return htmlSanitizer.Sanitize(buf.String()), nil
}
