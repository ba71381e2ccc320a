// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package markdown renders user-supplied markdown (session notes) to
// sanitized HTML for feed display.
package markdown

import (
	"bytes"
	"html"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

// ugcPolicy allows the safe HTML subset for user-generated content
// while stripping scripts, event handlers and other dangerous elements.
var ugcPolicy = bluemonday.UGCPolicy()

// RenderUGC converts untrusted markdown to sanitized HTML. On a
// conversion failure the input is returned escaped rather than lost.
func RenderUGC(src string) string {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		return "<p>" + html.EscapeString(src) + "</p>"
	}
	return ugcPolicy.Sanitize(buf.String())
}
