// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package menutree implements the in-memory reconciliation logic behind the
// menu editor: building a nested tree from flat rows, flattening it back with
// recomputed parent/order fields, guarding drag-and-drop moves against
// cycles, and coordinating saves against a backing store.
package menutree

// Item is the flat, persisted shape of a menu entry. Sibling order within a
// parent is carried by SortOrder; an empty ParentID means root level.
type Item struct {
	ID             string `json:"id"`
	Label          string `json:"label"`
	LabelLocalized string `json:"label_localized,omitempty"`
	Href           string `json:"href"`
	ParentID       string `json:"parent_id,omitempty"`
	SortOrder      int    `json:"sort_order"`
	IsActive       bool   `json:"is_active"`
}

// Node is the in-memory tree shape of a menu entry. The Children field exists
// only here; the flat shape is what gets persisted.
type Node struct {
	Item
	Children []*Node `json:"children"`
}

// NewNode creates a leaf node from a flat item.
func NewNode(item Item) *Node {
	return &Node{Item: item, Children: []*Node{}}
}

// Clone returns a deep copy of the node and its subtree.
func (n *Node) Clone() *Node {
	c := &Node{Item: n.Item, Children: make([]*Node, 0, len(n.Children))}
	for _, child := range n.Children {
		c.Children = append(c.Children, child.Clone())
	}
	return c
}

// CloneForest returns a deep copy of a forest.
func CloneForest(forest []*Node) []*Node {
	out := make([]*Node, 0, len(forest))
	for _, n := range forest {
		out = append(out, n.Clone())
	}
	return out
}

// find locates a node by ID anywhere in the forest.
func find(forest []*Node, id string) *Node {
	for _, n := range forest {
		if n.ID == id {
			return n
		}
		if found := find(n.Children, id); found != nil {
			return found
		}
	}
	return nil
}

// Find locates a node by ID anywhere in the forest, or returns nil.
func Find(forest []*Node, id string) *Node {
	return find(forest, id)
}
