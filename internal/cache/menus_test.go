// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"testing"
	"time"

	"casedesk/internal/menutree"
)

func TestMenuCacheRoundTrip(t *testing.T) {
	backend := NewMemoryCache(time.Minute)
	defer backend.Close()
	mc := NewMenuCache(backend, time.Minute)
	ctx := context.Background()

	items := []menutree.Item{
		{ID: "a", Label: "Home", SortOrder: 0},
		{ID: "b", Label: "Cases", SortOrder: 1},
		{ID: "c", Label: "Open", ParentID: "b", SortOrder: 0},
	}

	if _, ok, err := mc.Get(ctx, "main"); err != nil || ok {
		t.Fatalf("Get before Put: ok=%v err=%v, want miss", ok, err)
	}

	if err := mc.Put(ctx, "main", items); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := mc.Get(ctx, "main")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("Get after Put: miss")
	}
	if len(got) != 3 || got[2].ParentID != "b" {
		t.Errorf("cached items = %+v", got)
	}

	if err := mc.Invalidate(ctx, "main"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, ok, _ := mc.Get(ctx, "main"); ok {
		t.Error("Get after Invalidate: hit")
	}
}

func TestMenuCacheCorruptEntry(t *testing.T) {
	backend := NewMemoryCache(time.Minute)
	defer backend.Close()
	mc := NewMenuCache(backend, time.Minute)
	ctx := context.Background()

	if err := backend.Set(ctx, "menu:main", []byte("{not json"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok, err := mc.Get(ctx, "main"); err != nil || ok {
		t.Errorf("corrupt entry: ok=%v err=%v, want miss without error", ok, err)
	}
}
