// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cache provides the small read-through cache used for the
// home dashboard payload. Values are opaque []byte so the in-memory
// and Redis backends are interchangeable.
package cache

import (
	"context"
	"time"
)

// Cache is a TTL'd byte cache. All implementations are safe for
// concurrent use.
type Cache interface {
	// Get returns the value for key, or ErrCacheMiss when absent or
	// expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A zero ttl uses the backend default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Error is a sentinel cache error.
type Error string

func (e Error) Error() string { return string(e) }

const (
	// ErrCacheMiss indicates the key was not found or has expired.
	ErrCacheMiss Error = "cache miss"

	// ErrCacheClosed indicates the cache has been closed.
	ErrCacheClosed Error = "cache closed"
)

// New selects a backend: Redis when a URL is configured, an in-process
// map otherwise.
func New(redisURL, prefix string, defaultTTL time.Duration) (Cache, error) {
	if redisURL != "" {
		return NewRedisCache(redisURL, prefix, defaultTTL)
	}
	return NewMemoryCache(defaultTTL), nil
}
