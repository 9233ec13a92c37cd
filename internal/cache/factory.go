// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"log/slog"
	"net/url"
	"time"
)

// Backend names reported by New.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config selects and sizes the cache backend.
type Config struct {
	// RedisURL selects Redis when set, e.g. redis://localhost:6379/0.
	RedisURL string
	// Prefix namespaces Redis keys.
	Prefix     string
	DefaultTTL time.Duration
	// MaxEntries bounds the memory backend (0 = unbounded).
	MaxEntries int
	SweepEvery time.Duration
}

// DefaultConfig returns the defaults used by the server.
func DefaultConfig() Config {
	return Config{
		Prefix:     "qsite:",
		DefaultTTL: time.Hour,
		MaxEntries: 10000,
		SweepEvery: time.Minute,
	}
}

// New returns the configured cache and the name of the backend in use. An
// unreachable Redis is logged and replaced by memory so pages keep serving;
// revocations are then local to this process.
func New(cfg Config, logger *slog.Logger) (Cache, string) {
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
		rc, err := NewRedisCache(ctx, cfg.RedisURL, cfg.Prefix, cfg.DefaultTTL)
		cancel()
		if err == nil {
			logger.Info("cache backend ready", "backend", BackendRedis, "url", SanitizeRedisURL(cfg.RedisURL))
			return rc, BackendRedis
		}
		logger.Warn("redis cache unavailable, using memory",
			"category", "cache",
			"url", SanitizeRedisURL(cfg.RedisURL),
			"error", err,
		)
	}

	logger.Info("cache backend ready", "backend", BackendMemory, "max_entries", cfg.MaxEntries)
	return NewMemoryCache(cfg.DefaultTTL, cfg.MaxEntries, cfg.SweepEvery), BackendMemory
}

// SanitizeRedisURL hides the password of a Redis URL for logs.
func SanitizeRedisURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "[invalid URL]"
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}
