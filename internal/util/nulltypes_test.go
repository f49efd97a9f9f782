// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import "testing"

func TestParseNullInt64(t *testing.T) {
	if got := ParseNullInt64("42"); !got.Valid || got.Int64 != 42 {
		t.Errorf("ParseNullInt64(42) = %+v", got)
	}
	for _, s := range []string{"", "0", "abc"} {
		if got := ParseNullInt64(s); got.Valid {
			t.Errorf("ParseNullInt64(%q) = %+v, want invalid", s, got)
		}
	}
}

func TestNullStringFromValue(t *testing.T) {
	if got := NullStringFromValue("x"); !got.Valid || got.String != "x" {
		t.Errorf("NullStringFromValue(x) = %+v", got)
	}
	if got := NullStringFromValue(""); got.Valid {
		t.Errorf("NullStringFromValue(\"\") = %+v, want invalid", got)
	}
}
