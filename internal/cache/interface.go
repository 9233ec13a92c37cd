// Package cache provides the byte-oriented cache behind the product list,
// the sitemap and the session revocation list. It is backed by process
// memory or, when several instances share state, by Redis.
package cache

import (
	"context"
	"time"
)

// Cache is safe for concurrent use.
type Cache interface {
	// Get returns ErrCacheMiss if the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value. A non-positive TTL falls back to the cache's
	// default TTL, and to no expiry when that is zero as well.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error

	Close() error
}

// Inspector reports liveness and counters for the staff health page.
// Both backends implement it.
type Inspector interface {
	Ping(ctx context.Context) error
	Stats(ctx context.Context) Stats
}

// Stats is a snapshot of cache counters since startup.
type Stats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	Items   int     `json:"items"`
	HitRate float64 `json:"hit_rate"`
}

func newStats(hits, misses int64, items int) Stats {
	s := Stats{Hits: hits, Misses: misses, Items: items}
	if total := hits + misses; total > 0 {
		s.HitRate = float64(hits) / float64(total) * 100
	}
	return s
}

// Error is a sentinel cache error.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrCacheMiss indicates the key was not found in cache or has expired.
	ErrCacheMiss Error = "cache miss"

	// ErrCacheClosed indicates the cache has been closed.
	ErrCacheClosed Error = "cache closed"
)
