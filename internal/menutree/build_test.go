// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package menutree

import "testing"

func item(id, parentID string, sortOrder int) Item {
	return Item{
		ID:        id,
		Label:     "node " + id,
		Href:      "/" + id,
		ParentID:  parentID,
		SortOrder: sortOrder,
		IsActive:  true,
	}
}

func ids(forest []*Node) []string {
	out := make([]string, 0, len(forest))
	for _, n := range forest {
		out = append(out, n.ID)
	}
	return out
}

func TestBuildNestsAndSorts(t *testing.T) {
	// Unordered input: children listed before parents, positions shuffled.
	items := []Item{
		item("c", "b", 0),
		item("b", "a", 1),
		item("d", "a", 0),
		item("a", "", 1),
		item("e", "", 0),
	}

	forest := Build(items)

	if len(forest) != 2 {
		t.Fatalf("len(forest) = %d, want 2", len(forest))
	}
	if forest[0].ID != "e" || forest[1].ID != "a" {
		t.Errorf("roots = %v, want [e a]", ids(forest))
	}
	a := forest[1]
	if len(a.Children) != 2 {
		t.Fatalf("len(a.Children) = %d, want 2", len(a.Children))
	}
	if a.Children[0].ID != "d" || a.Children[1].ID != "b" {
		t.Errorf("a children = %v, want [d b]", ids(a.Children))
	}
	if len(a.Children[1].Children) != 1 || a.Children[1].Children[0].ID != "c" {
		t.Errorf("b children = %v, want [c]", ids(a.Children[1].Children))
	}
}

func TestBuildDanglingParentBecomesRoot(t *testing.T) {
	items := []Item{
		item("a", "", 0),
		item("orphan", "no-such-node", 5),
	}

	forest := Build(items)

	if len(forest) != 2 {
		t.Fatalf("len(forest) = %d, want 2", len(forest))
	}
	if forest[1].ID != "orphan" {
		t.Errorf("forest[1].ID = %q, want %q", forest[1].ID, "orphan")
	}
}

func TestBuildParentCycleSurfaces(t *testing.T) {
	// Mutually parented nodes reach no root; the builder must surface them
	// instead of dropping them from the forest.
	items := []Item{
		item("a", "", 0),
		item("b", "c", 0),
		item("c", "b", 0),
	}

	forest := Build(items)

	total := len(Flatten(forest))
	if total != 3 {
		t.Fatalf("flattened %d items, want 3", total)
	}
	if len(forest) != 2 {
		t.Fatalf("roots = %v, want [a b]", ids(forest))
	}
	b := forest[1]
	if b.ID != "b" {
		t.Errorf("forest[1].ID = %q, want %q", b.ID, "b")
	}
	if len(b.Children) != 1 || b.Children[0].ID != "c" {
		t.Errorf("b children = %v, want [c]", ids(b.Children))
	}
}

func TestBuildSelfParentBecomesRoot(t *testing.T) {
	forest := Build([]Item{item("a", "a", 0)})

	if len(forest) != 1 || forest[0].ID != "a" {
		t.Fatalf("forest = %v, want [a]", ids(forest))
	}
	if len(forest[0].Children) != 0 {
		t.Errorf("self-parented node must not become its own child")
	}
}

func TestBuildEmpty(t *testing.T) {
	if forest := Build(nil); len(forest) != 0 {
		t.Errorf("Build(nil) = %v, want empty", ids(forest))
	}
}

func TestBuildStableOnEqualSortOrder(t *testing.T) {
	items := []Item{
		item("x", "", 0),
		item("y", "", 0),
		item("z", "", 0),
	}

	forest := Build(items)

	want := []string{"x", "y", "z"}
	got := ids(forest)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("roots = %v, want %v", got, want)
		}
	}
}
