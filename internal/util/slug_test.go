// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple name",
			input:    "Grim Dabbler",
			expected: "grim-dabbler",
		},
		{
			name:     "with punctuation",
			input:    "Brush, Licker!",
			expected: "brush-licker",
		},
		{
			name:     "with numbers",
			input:    "Painter 42",
			expected: "painter-42",
		},
		{
			name:     "with accents",
			input:    "Café résumé",
			expected: "cafe-resume",
		},
		{
			name:     "multiple spaces",
			input:    "shelf   of   shame",
			expected: "shelf-of-shame",
		},
		{
			name:     "embedded hyphens",
			input:    "pile - of - fame",
			expected: "pile-of-fame",
		},
		{
			name:     "leading and trailing spaces",
			input:    "  grim dabbler  ",
			expected: "grim-dabbler",
		},
		{
			name:     "only special characters",
			input:    "!@#$%^&*()",
			expected: "",
		},
		{
			name:     "non-latin script",
			input:    "日本語",
			expected: "",
		},
		{
			name:     "german umlauts",
			input:    "Über München",
			expected: "uber-munchen",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "mixed case",
			input:    "GrimDabbler",
			expected: "grimdabbler",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.expected {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
