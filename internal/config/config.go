// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the QS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
	"your-secret-key-here-change-in-production",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBDriver      string `env:"QS_DB_DRIVER" envDefault:"sqlite"`
	DatabaseURL   string `env:"QS_DATABASE_URL" envDefault:"./data/qsite.db"`
	SessionSecret string `env:"QS_SESSION_SECRET,required"`
	BaseURL       string `env:"QS_BASE_URL" envDefault:"http://localhost:8080"`
	ServerHost    string `env:"QS_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"QS_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"QS_ENV" envDefault:"development"`
	LogLevel      string `env:"QS_LOG_LEVEL" envDefault:"info"`

	// TrustedProxies lists the reverse proxies (IPs or CIDRs) whose
	// X-Forwarded-For and X-Real-IP headers are believed. Empty means the
	// connection address is always the client address.
	TrustedProxies []string `env:"QS_TRUSTED_PROXIES" envSeparator:","`

	// Cache configuration
	RedisURL        string        `env:"QS_REDIS_URL"` // Optional; memory cache when empty
	CachePrefix     string        `env:"QS_CACHE_PREFIX" envDefault:"qsite:"`
	CacheMaxSize    int           `env:"QS_CACHE_MAX_SIZE" envDefault:"10000"`
	ProductCacheTTL time.Duration `env:"QS_PRODUCT_CACHE_TTL" envDefault:"60s"`

	// Login protection
	LoginMaxAttempts int           `env:"QS_LOGIN_MAX_ATTEMPTS" envDefault:"5"`
	LoginLockout     time.Duration `env:"QS_LOGIN_LOCKOUT" envDefault:"15m"`

	DoSeed bool `env:"QS_DO_SEED" envDefault:"false"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true for production deployments.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// TrustedProxyPrefixes parses TrustedProxies. A bare address becomes a
// single-host prefix.
func (c Config) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, raw := range c.TrustedProxies {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.Contains(raw, "/") {
			p, err := netip.ParsePrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("QS_TRUSTED_PROXIES: %w", err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("QS_TRUSTED_PROXIES: %w", err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// SlogLevel maps LogLevel to a slog level; unknown values mean info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// MinSessionSecretLength is the minimum required length for the session secret.
// HS256 keys shorter than the hash output weaken the signature.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("QS_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.SessionSecret) < MinSessionSecretLength {
		return fmt.Errorf("QS_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(c.SessionSecret))
	}
	for _, weak := range knownWeakSecrets {
		if c.SessionSecret == weak {
			return errors.New("QS_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	switch c.DBDriver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("QS_DB_DRIVER must be sqlite or mysql, got %q", c.DBDriver)
	}

	switch c.Env {
	case "development", "production", "test":
	default:
		return fmt.Errorf("QS_ENV must be development, production or test, got %q", c.Env)
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("QS_BASE_URL must be an absolute URL, got %q", c.BaseURL)
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")

	if c.LoginMaxAttempts < 1 {
		return fmt.Errorf("QS_LOGIN_MAX_ATTEMPTS must be positive, got %d", c.LoginMaxAttempts)
	}
	if c.LoginLockout <= 0 {
		return fmt.Errorf("QS_LOGIN_LOCKOUT must be positive, got %s", c.LoginLockout)
	}
	if c.ProductCacheTTL < 0 {
		return fmt.Errorf("QS_PRODUCT_CACHE_TTL must not be negative, got %s", c.ProductCacheTTL)
	}
	if _, err := c.TrustedProxyPrefixes(); err != nil {
		return err
	}
	return nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
