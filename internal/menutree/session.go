// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package menutree

import (
	"context"
	"sort"
	"sync"
)

// State is the lifecycle state of an editing session.
type State int

const (
	// StateLoading means no flat list has been loaded yet; editing is blocked.
	StateLoading State = iota
	// StateClean means the tree matches the last-saved snapshot.
	StateClean
	// StateDirty means the tree has structural changes not yet saved.
	StateDirty
	// StateSaving means a commit is in flight.
	StateSaving
)

// String returns a readable name for the state.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateClean:
		return "clean"
	case StateDirty:
		return "dirty"
	case StateSaving:
		return "saving"
	}
	return "unknown"
}

// Updater persists the placement of a single node. Implementations are
// called concurrently during a commit, one call per node.
type Updater interface {
	UpdateNode(ctx context.Context, id string, parentID string, sortOrder int) error
}

// UpdaterFunc adapts a function to the Updater interface.
type UpdaterFunc func(ctx context.Context, id string, parentID string, sortOrder int) error

// UpdateNode calls f.
func (f UpdaterFunc) UpdateNode(ctx context.Context, id string, parentID string, sortOrder int) error {
	return f(ctx, id, parentID, sortOrder)
}

// CommitResult reports the outcome of a commit. A commit with failed IDs
// leaves the backend in a mixed state; the caller decides whether to retry
// the save or refetch.
type CommitResult struct {
	Updated   int      `json:"updated"`
	FailedIDs []string `json:"failed_ids,omitempty"`
}

// OK reports whether every per-node update succeeded.
func (r CommitResult) OK() bool {
	return len(r.FailedIDs) == 0
}

// Session is the editing session for one menu: a single in-memory tree plus
// the last-saved snapshot it is diffed against. All tree edits happen
// synchronously between user gestures; the only concurrency is the
// fire-and-collect fan-out of per-node updates during Commit.
type Session struct {
	roots    []*Node
	original []Item
	state    State
}

// NewSession creates a session in the Loading state.
func NewSession() *Session {
	return &Session{state: StateLoading}
}

// Load replaces the session contents with the given flat list. The snapshot
// is normalized through a build/flatten round trip so that later comparisons
// see dense, positionally recomputed sort orders on both sides.
func (s *Session) Load(items []Item) {
	s.roots = Build(items)
	s.original = Flatten(s.roots)
	s.state = StateClean
}

// Tree returns the current forest. Callers must treat it as owned by the
// session and route mutations through Move, Insert, Remove, or SetTree.
func (s *Session) Tree() []*Node {
	return s.roots
}

// State returns the current session state.
func (s *Session) State() State {
	return s.state
}

// Move applies a drag gesture. A rejected move (cycle, unknown node) leaves
// both the tree and the session state unchanged.
func (s *Session) Move(draggedID, targetID string, pos DropPosition) error {
	if s.state == StateLoading {
		return ErrNotFound
	}
	roots, err := Move(s.roots, draggedID, targetID, pos)
	if err != nil {
		return err
	}
	s.roots = roots
	s.markAfterMutation()
	return nil
}

// Insert adds a new item as the last child of parentID, or at root level
// when parentID is empty or unknown.
func (s *Session) Insert(item Item, parentID string) {
	node := NewNode(item)
	if parent := find(s.roots, parentID); parentID != "" && parent != nil {
		node.ParentID = parent.ID
		parent.Children = append(parent.Children, node)
		renumber(parent.Children, parent.ID)
	} else {
		node.ParentID = ""
		s.roots = append(s.roots, node)
		renumber(s.roots, "")
	}
	s.markAfterMutation()
}

// Remove deletes the node with the given ID together with its subtree.
// Returns false if the node was not found.
func (s *Session) Remove(id string) bool {
	roots, node := detach(s.roots, id)
	if node == nil {
		return false
	}
	s.roots = roots
	s.markAfterMutation()
	return true
}

// SetTree replaces the whole in-memory forest, e.g. with a tree submitted
// by the editor. The snapshot is untouched.
func (s *Session) SetTree(forest []*Node) {
	s.roots = forest
	s.markAfterMutation()
}

// HasUnsavedChanges reports whether the current tree differs structurally
// from the last-saved snapshot, comparing {id, parentId, sortOrder} triples.
func (s *Session) HasUnsavedChanges() bool {
	current := Flatten(s.roots)
	if len(current) != len(s.original) {
		return true
	}
	saved := make(map[string]Item, len(s.original))
	for _, item := range s.original {
		saved[item.ID] = item
	}
	for _, item := range current {
		prev, ok := saved[item.ID]
		if !ok || prev.ParentID != item.ParentID || prev.SortOrder != item.SortOrder {
			return true
		}
	}
	return false
}

// Commit flattens the current tree and issues one update per node through
// the updater. Every node in the flattened list is written, not just the
// changed ones; the writes are idempotent and the redundancy keeps the
// coordinator simple. Updates run concurrently and are all awaited before
// reporting. On full success the snapshot is replaced and the session goes
// Clean; on partial failure the failed IDs are reported and the session
// stays Dirty so the save can be re-attempted.
func (s *Session) Commit(ctx context.Context, u Updater) CommitResult {
	items := Flatten(s.roots)
	s.state = StateSaving

	var (
		mu     sync.Mutex
		failed []string
		wg     sync.WaitGroup
	)
	for _, item := range items {
		wg.Add(1)
		go func(item Item) {
			defer wg.Done()
			if err := u.UpdateNode(ctx, item.ID, item.ParentID, item.SortOrder); err != nil {
				mu.Lock()
				failed = append(failed, item.ID)
				mu.Unlock()
			}
		}(item)
	}
	wg.Wait()

	sort.Strings(failed)
	result := CommitResult{Updated: len(items) - len(failed), FailedIDs: failed}
	if result.OK() {
		s.original = items
		s.state = StateClean
	} else {
		s.state = StateDirty
	}
	return result
}

// Discard restores the tree from the last-saved snapshot without contacting
// the backend.
func (s *Session) Discard() {
	s.roots = Build(s.original)
	s.state = StateClean
}

func (s *Session) markAfterMutation() {
	if s.HasUnsavedChanges() {
		s.state = StateDirty
	} else {
		s.state = StateClean
	}
}
