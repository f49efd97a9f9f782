// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package menutree

import "sort"

// Build converts a flat list of items into a forest of root nodes.
// Items whose ParentID does not resolve to a known item are treated as
// root-level rather than dropped. Every level, including the root list,
// is sorted ascending by SortOrder.
func Build(items []Item) []*Node {
	byID := make(map[string]*Node, len(items))
	for _, item := range items {
		byID[item.ID] = NewNode(item)
	}

	var roots []*Node
	for _, item := range items {
		node := byID[item.ID]
		if item.ParentID != "" {
			if parent, ok := byID[item.ParentID]; ok && parent != node {
				parent.Children = append(parent.Children, node)
				continue
			}
			// Dangling parent reference: fall back to root level.
		}
		roots = append(roots, node)
	}

	roots = promoteOrphanCycles(roots, byID, items)

	sortForest(roots)
	return roots
}

// promoteOrphanCycles surfaces nodes trapped in a parent cycle (A under B,
// B under A), which corrupt data can produce since placement rows carry no
// cycle check. Such nodes hang off each other but off no root, so a plain
// build would drop them and the next save would erase them. One member of
// each cycle is detached from its parent and promoted to root level, which
// makes the rest of the cycle reachable again as its subtree.
func promoteOrphanCycles(roots []*Node, byID map[string]*Node, items []Item) []*Node {
	reachable := make(map[string]bool, len(byID))
	var mark func(n *Node)
	mark = func(n *Node) {
		reachable[n.ID] = true
		for _, c := range n.Children {
			mark(c)
		}
	}
	for _, r := range roots {
		mark(r)
	}

	// Walk in input order so the promotion is deterministic.
	for _, item := range items {
		if len(reachable) == len(byID) {
			break
		}
		if reachable[item.ID] {
			continue
		}
		node := byID[item.ID]
		if parent, ok := byID[node.ParentID]; ok {
			for i, c := range parent.Children {
				if c == node {
					parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
					break
				}
			}
		}
		node.ParentID = ""
		roots = append(roots, node)
		mark(node)
	}
	return roots
}

// sortForest orders every level of the forest by SortOrder ascending.
// The sort is stable so items with equal SortOrder keep input order.
func sortForest(forest []*Node) {
	sort.SliceStable(forest, func(i, j int) bool {
		return forest[i].SortOrder < forest[j].SortOrder
	})
	for _, n := range forest {
		sortForest(n.Children)
	}
}
