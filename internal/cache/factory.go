// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"fmt"
	"time"
)

// Config selects and configures a cache backend.
type Config struct {
	// Type is the backend type: "memory" or "redis".
	Type string

	// RedisURL is the Redis connection URL, required for the redis type.
	RedisURL string

	// Prefix is the key prefix for the redis backend.
	Prefix string

	// DefaultTTL is the default TTL for cache entries.
	DefaultTTL time.Duration
}

// New creates a cache backend from the configuration. The zero value yields
// an in-memory cache with a one hour TTL.
func New(cfg Config) (Cache, error) {
	if cfg.DefaultTTL == 0 {
		cfg.DefaultTTL = time.Hour
	}

	switch cfg.Type {
	case "", "memory":
		return NewMemoryCache(cfg.DefaultTTL), nil
	case "redis":
		return NewRedisCache(RedisOptions{
			URL:        cfg.RedisURL,
			Prefix:     cfg.Prefix,
			DefaultTTL: cfg.DefaultTTL,
		})
	default:
		return nil, fmt.Errorf("unknown cache type: %s", cfg.Type)
	}
}
