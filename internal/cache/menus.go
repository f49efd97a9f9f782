// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"casedesk/internal/menutree"
)

// MenuCache caches the flattened item list of each menu, keyed by menu slug.
// Entries are invalidated whenever the menu's tree is saved, so the TTL is
// only a backstop.
type MenuCache struct {
	backend Cache
	ttl     time.Duration
}

// NewMenuCache wraps a cache backend for menu item lists.
func NewMenuCache(backend Cache, ttl time.Duration) *MenuCache {
	if ttl == 0 {
		ttl = time.Hour
	}
	return &MenuCache{backend: backend, ttl: ttl}
}

func menuKey(slug string) string {
	return "menu:" + slug
}

// Get returns the cached flat item list for a menu, or ok=false on a miss.
func (c *MenuCache) Get(ctx context.Context, slug string) ([]menutree.Item, bool, error) {
	data, err := c.backend.Get(ctx, menuKey(slug))
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var items []menutree.Item
	if err := json.Unmarshal(data, &items); err != nil {
		// A corrupt entry is treated as a miss and dropped.
		_ = c.backend.Delete(ctx, menuKey(slug))
		return nil, false, nil
	}
	return items, true, nil
}

// Put stores the flat item list for a menu.
func (c *MenuCache) Put(ctx context.Context, slug string, items []menutree.Item) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return c.backend.Set(ctx, menuKey(slug), data, c.ttl)
}

// Invalidate drops the cached entry for a menu.
func (c *MenuCache) Invalidate(ctx context.Context, slug string) error {
	return c.backend.Delete(ctx, menuKey(slug))
}
