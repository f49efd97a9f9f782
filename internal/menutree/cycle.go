// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package menutree

// IsDescendant reports whether descendantID is found anywhere in the subtree
// rooted at ancestorID, the ancestor itself included. It is the guard used
// before committing a drag-and-drop reparent: moving a node beneath its own
// descendant would create a cycle. Cost is linear in the subtree size, which
// is fine for menus of tens to low hundreds of nodes.
func IsDescendant(forest []*Node, ancestorID, descendantID string) bool {
	root := find(forest, ancestorID)
	if root == nil {
		return false
	}
	return subtreeContains(root, descendantID)
}

func subtreeContains(n *Node, id string) bool {
	if n.ID == id {
		return true
	}
	for _, child := range n.Children {
		if subtreeContains(child, id) {
			return true
		}
	}
	return false
}
