// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package menutree

import "testing"

// siblingsFixture builds a forest with roots [X, Y, Z] and a separate root W.
func siblingsFixture() []*Node {
	return Build([]Item{
		item("X", "", 0),
		item("Y", "", 1),
		item("Z", "", 2),
		item("W", "", 3),
	})
}

func TestDropBefore(t *testing.T) {
	forest, err := Move(siblingsFixture(), "W", "Y", DropBefore)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}

	want := []string{"X", "W", "Y", "Z"}
	got := ids(forest)
	if len(got) != len(want) {
		t.Fatalf("roots = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("roots = %v, want %v", got, want)
		}
		if forest[i].SortOrder != i {
			t.Errorf("forest[%d].SortOrder = %d, want %d", i, forest[i].SortOrder, i)
		}
	}
}

func TestDropAfter(t *testing.T) {
	forest, err := Move(siblingsFixture(), "W", "X", DropAfter)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}

	want := []string{"X", "W", "Y", "Z"}
	got := ids(forest)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("roots = %v, want %v", got, want)
		}
	}
}

func TestDropOnNests(t *testing.T) {
	forest, err := Move(siblingsFixture(), "W", "Y", DropOn)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}

	y := Find(forest, "Y")
	if len(y.Children) != 1 || y.Children[0].ID != "W" {
		t.Fatalf("Y.Children = %v, want [W]", ids(y.Children))
	}
	w := y.Children[0]
	if w.ParentID != "Y" {
		t.Errorf("W.ParentID = %q, want %q", w.ParentID, "Y")
	}
	if w.SortOrder != 0 {
		t.Errorf("W.SortOrder = %d, want 0", w.SortOrder)
	}
	// W left the root list and the remaining roots got renumbered.
	if len(forest) != 3 {
		t.Fatalf("roots = %v, want 3 entries", ids(forest))
	}
	for i, n := range forest {
		if n.SortOrder != i {
			t.Errorf("root %s SortOrder = %d, want %d", n.ID, n.SortOrder, i)
		}
	}
}

func TestDropOnAppendsAsLastChild(t *testing.T) {
	forest := Build([]Item{
		item("parent", "", 0),
		item("first", "parent", 0),
		item("loose", "", 1),
	})

	forest, err := Move(forest, "loose", "parent", DropOn)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}

	parent := Find(forest, "parent")
	if len(parent.Children) != 2 {
		t.Fatalf("parent.Children = %v, want 2 entries", ids(parent.Children))
	}
	if parent.Children[1].ID != "loose" {
		t.Errorf("last child = %s, want loose", parent.Children[1].ID)
	}
}

func TestSelfDropIsNoOp(t *testing.T) {
	forest := siblingsFixture()
	before := Flatten(forest)

	forest, err := Move(forest, "Y", "Y", DropOn)
	if err != nil {
		t.Fatalf("self drop returned error %v, want nil", err)
	}

	after := Flatten(forest)
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("self drop changed the tree")
		}
	}
}

func TestMoveUnknownNode(t *testing.T) {
	if _, err := Move(siblingsFixture(), "missing", "Y", DropBefore); err != ErrNotFound {
		t.Errorf("Move(missing) error = %v, want ErrNotFound", err)
	}
	if _, err := Move(siblingsFixture(), "Y", "missing", DropBefore); err != ErrNotFound {
		t.Errorf("Move(onto missing) error = %v, want ErrNotFound", err)
	}
}

func TestReorderWithinSameParent(t *testing.T) {
	// Dragging Z before X: the sibling list excludes the dragged node
	// before the insertion index is computed.
	forest, err := Move(siblingsFixture(), "Z", "X", DropBefore)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}

	want := []string{"Z", "X", "Y", "W"}
	got := ids(forest)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("roots = %v, want %v", got, want)
		}
	}
}

func TestMoveChildOutToRootLevel(t *testing.T) {
	forest := Build([]Item{
		item("a", "", 0),
		item("b", "a", 0),
		item("c", "", 1),
	})

	forest, err := Move(forest, "b", "c", DropAfter)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}

	b := Find(forest, "b")
	if b.ParentID != "" {
		t.Errorf("b.ParentID = %q, want root", b.ParentID)
	}
	want := []string{"a", "c", "b"}
	got := ids(forest)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("roots = %v, want %v", got, want)
		}
	}
	if len(Find(forest, "a").Children) != 0 {
		t.Errorf("a still has children after b moved out")
	}
}
