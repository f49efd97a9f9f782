// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package menutree

import "testing"

// chain builds A -> B -> C (C child of B, B child of A).
func chain() []*Node {
	return Build([]Item{
		item("A", "", 0),
		item("B", "A", 0),
		item("C", "B", 0),
	})
}

func TestIsDescendant(t *testing.T) {
	forest := chain()

	tests := []struct {
		ancestor   string
		descendant string
		want       bool
	}{
		{"A", "C", true},
		{"A", "B", true},
		{"B", "C", true},
		{"C", "A", false},
		{"B", "A", false},
		{"A", "A", true}, // a node is in its own subtree
		{"A", "missing", false},
		{"missing", "A", false},
	}
	for _, tt := range tests {
		if got := IsDescendant(forest, tt.ancestor, tt.descendant); got != tt.want {
			t.Errorf("IsDescendant(%s, %s) = %v, want %v", tt.ancestor, tt.descendant, got, tt.want)
		}
	}
}

func TestMoveIntoOwnDescendantRejected(t *testing.T) {
	forest := chain()
	before := Flatten(forest)

	_, err := Move(forest, "A", "C", DropOn)
	if err != ErrCycle {
		t.Fatalf("Move(A onto C) error = %v, want ErrCycle", err)
	}

	// Tree left unchanged.
	after := Flatten(forest)
	if len(after) != len(before) {
		t.Fatalf("tree changed after rejected move")
	}
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("tree changed after rejected move: %+v != %+v", before[i], after[i])
		}
	}
}

func TestMoveBeforeOwnDescendantRejected(t *testing.T) {
	forest := chain()
	if _, err := Move(forest, "A", "C", DropBefore); err != ErrCycle {
		t.Errorf("Move(A before C) error = %v, want ErrCycle", err)
	}
}
