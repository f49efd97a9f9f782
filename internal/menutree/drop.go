// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package menutree

import "errors"

// DropPosition describes where a dragged node lands relative to the target.
type DropPosition int

const (
	// DropBefore inserts the dragged node as a sibling immediately before
	// the target.
	DropBefore DropPosition = iota
	// DropAfter inserts the dragged node as a sibling immediately after
	// the target.
	DropAfter
	// DropOn nests the dragged node as the last child of the target.
	DropOn
)

var (
	// ErrCycle is returned when a move would place a node beneath its own
	// descendant.
	ErrCycle = errors.New("menutree: move would create a cycle")
	// ErrNotFound is returned when the dragged or target node does not
	// exist in the forest.
	ErrNotFound = errors.New("menutree: node not found")
)

// Move applies a drag gesture to the forest and returns the resulting root
// list. Dropping a node onto itself is a no-op, not an error. A move whose
// target sits inside the dragged node's own subtree is rejected with
// ErrCycle and the forest is left unchanged. Affected sibling lists are
// renumbered contiguously from 0. Only the in-memory tree is mutated; the
// backend is not touched until an explicit save.
func Move(forest []*Node, draggedID, targetID string, pos DropPosition) ([]*Node, error) {
	if draggedID == targetID {
		return forest, nil
	}
	if find(forest, draggedID) == nil || find(forest, targetID) == nil {
		return forest, ErrNotFound
	}
	if IsDescendant(forest, draggedID, targetID) {
		return forest, ErrCycle
	}

	forest, dragged := detach(forest, draggedID)

	switch pos {
	case DropOn:
		target := find(forest, targetID)
		dragged.ParentID = target.ID
		target.Children = append(target.Children, dragged)
		renumber(target.Children, target.ID)
	case DropBefore, DropAfter:
		parent, siblings := siblingsOf(forest, targetID)
		idx := indexOf(siblings, targetID)
		if pos == DropAfter {
			idx++
		}
		siblings = insertAt(siblings, idx, dragged)
		if parent == nil {
			forest = siblings
			renumber(forest, "")
		} else {
			parent.Children = siblings
			renumber(parent.Children, parent.ID)
		}
	}

	return forest, nil
}

// detach removes the node with the given ID from the forest and returns the
// updated root list along with the detached node. The list it was removed
// from is renumbered.
func detach(forest []*Node, id string) ([]*Node, *Node) {
	for i, n := range forest {
		if n.ID == id {
			forest = append(forest[:i], forest[i+1:]...)
			renumber(forest, "")
			return forest, n
		}
	}
	var detached *Node
	var walk func(parent *Node)
	walk = func(parent *Node) {
		for i, child := range parent.Children {
			if child.ID == id {
				parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
				renumber(parent.Children, parent.ID)
				detached = child
				return
			}
			walk(child)
			if detached != nil {
				return
			}
		}
	}
	for _, n := range forest {
		walk(n)
		if detached != nil {
			break
		}
	}
	return forest, detached
}

// siblingsOf returns the parent node of id (nil for root level) and the
// sibling list containing it.
func siblingsOf(forest []*Node, id string) (*Node, []*Node) {
	for _, n := range forest {
		if n.ID == id {
			return nil, forest
		}
	}
	var parent *Node
	var walk func(n *Node)
	walk = func(n *Node) {
		for _, child := range n.Children {
			if child.ID == id {
				parent = n
				return
			}
			walk(child)
			if parent != nil {
				return
			}
		}
	}
	for _, n := range forest {
		walk(n)
		if parent != nil {
			return parent, parent.Children
		}
	}
	return nil, forest
}

func indexOf(siblings []*Node, id string) int {
	for i, n := range siblings {
		if n.ID == id {
			return i
		}
	}
	return len(siblings)
}

func insertAt(siblings []*Node, idx int, n *Node) []*Node {
	if idx < 0 {
		idx = 0
	}
	if idx > len(siblings) {
		idx = len(siblings)
	}
	siblings = append(siblings, nil)
	copy(siblings[idx+1:], siblings[idx:])
	siblings[idx] = n
	return siblings
}

// renumber assigns dense zero-based SortOrder values and the given ParentID
// to every node in the sibling list.
func renumber(siblings []*Node, parentID string) {
	for i, n := range siblings {
		n.SortOrder = i
		n.ParentID = parentID
	}
}
