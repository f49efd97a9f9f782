// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Hello World", "hello-world"},
		{"Café au Lait", "cafe-au-lait"},
		{"  spaces  everywhere  ", "spaces-everywhere"},
		{"Already-a-slug", "already-a-slug"},
		{"Special!@#Chars", "specialchars"},
		{"multiple---hyphens", "multiple-hyphens"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsValidSlug(t *testing.T) {
	valid := []string{"a", "case-42", "winter-relief"}
	invalid := []string{"", "-leading", "trailing-", "UPPER", "double--hyphen", "with space"}

	for _, s := range valid {
		if !IsValidSlug(s) {
			t.Errorf("IsValidSlug(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsValidSlug(s) {
			t.Errorf("IsValidSlug(%q) = true, want false", s)
		}
	}
}
