// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package menutree

// Flatten serializes a forest back into the flat shape using a depth-first
// pre-order walk. ParentID and SortOrder are recomputed from tree position:
// each sibling list is renumbered densely from 0, so stored values are never
// trusted. Flatten is the single source of truth for persisted order.
func Flatten(forest []*Node) []Item {
	items := make([]Item, 0, count(forest))
	flattenInto(&items, forest, "")
	return items
}

func flattenInto(items *[]Item, level []*Node, parentID string) {
	for i, n := range level {
		item := n.Item
		item.ParentID = parentID
		item.SortOrder = i
		*items = append(*items, item)
		flattenInto(items, n.Children, n.ID)
	}
}

func count(forest []*Node) int {
	total := 0
	for _, n := range forest {
		total += 1 + count(n.Children)
	}
	return total
}

// Count returns the number of nodes in the forest.
func Count(forest []*Node) int {
	return count(forest)
}
