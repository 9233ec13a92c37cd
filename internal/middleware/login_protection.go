// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/qualitysolutions/qsite/internal/i18n"
	"github.com/qualitysolutions/qsite/internal/store"
)

// LoginProtection combines per-IP rate limiting with per-account lockout.
// Lockout state lives in the login_attempts table so it survives restarts
// and is shared between instances.
type LoginProtection struct {
	ipLimiters *limiterCache[string]
	queries    *store.Queries

	maxFailedAttempts int
	lockoutDuration   time.Duration
	attemptWindow     time.Duration

	now func() time.Time
}

// LoginProtectionConfig holds configuration for login protection.
type LoginProtectionConfig struct {
	// IPRateLimit is requests per second per IP (default: 0.5 = 1 request per 2 seconds)
	IPRateLimit float64
	// IPBurst is the maximum burst size for IP rate limiting (default: 5)
	IPBurst int
	// MaxFailedAttempts before account lockout (default: 5)
	MaxFailedAttempts int
	// LockoutDuration is counted from the last failure (default: 15 minutes)
	LockoutDuration time.Duration
	// AttemptWindow is the time window for counting failed attempts (default: 15 minutes)
	AttemptWindow time.Duration
}

// DefaultLoginProtectionConfig returns the production defaults.
func DefaultLoginProtectionConfig() LoginProtectionConfig {
	return LoginProtectionConfig{
		IPRateLimit:       0.5,
		IPBurst:           5,
		MaxFailedAttempts: 5,
		LockoutDuration:   15 * time.Minute,
		AttemptWindow:     15 * time.Minute,
	}
}

// NewLoginProtection creates login protection over the login_attempts table.
// Zero config values fall back to the defaults.
func NewLoginProtection(db store.DBTX, cfg LoginProtectionConfig) *LoginProtection {
	def := DefaultLoginProtectionConfig()
	if cfg.IPRateLimit <= 0 {
		cfg.IPRateLimit = def.IPRateLimit
	}
	if cfg.IPBurst <= 0 {
		cfg.IPBurst = def.IPBurst
	}
	if cfg.MaxFailedAttempts <= 0 {
		cfg.MaxFailedAttempts = def.MaxFailedAttempts
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = def.LockoutDuration
	}
	if cfg.AttemptWindow <= 0 {
		cfg.AttemptWindow = def.AttemptWindow
	}

	return &LoginProtection{
		ipLimiters:        newLimiterCache[string](cfg.IPRateLimit, cfg.IPBurst),
		queries:           store.New(db),
		maxFailedAttempts: cfg.MaxFailedAttempts,
		lockoutDuration:   cfg.LockoutDuration,
		attemptWindow:     cfg.AttemptWindow,
		now:               time.Now,
	}
}

// CheckIPRateLimit reports whether a request from ip is allowed.
func (lp *LoginProtection) CheckIPRateLimit(ip string) bool {
	if lp.ipLimiters.clearIfExceeds(maxLimiters) {
		slog.Info("cleared login rate limiters due to size")
	}
	return lp.ipLimiters.get(ip).Allow()
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// recentFailures counts the failures since the last success that fall
// inside the attempt window, and returns the time of the newest one.
func (lp *LoginProtection) recentFailures(ctx context.Context, email string) (int, time.Time, error) {
	attempts, err := lp.queries.ListRecentLoginAttempts(ctx, email, int64(lp.maxFailedAttempts))
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("listing login attempts: %w", err)
	}

	now := lp.now()
	var (
		failures    int
		lastFailure time.Time
	)
	for _, a := range attempts {
		if a.Success || now.Sub(a.CreatedAt) > lp.attemptWindow {
			break
		}
		if failures == 0 {
			lastFailure = a.CreatedAt
		}
		failures++
	}
	return failures, lastFailure, nil
}

// IsAccountLocked reports whether email is locked and for how much longer.
// The answer is the same whether or not the account exists.
func (lp *LoginProtection) IsAccountLocked(ctx context.Context, email string) (bool, time.Duration, error) {
	failures, lastFailure, err := lp.recentFailures(ctx, normaliseEmail(email))
	if err != nil {
		return false, 0, err
	}
	if failures < lp.maxFailedAttempts {
		return false, 0, nil
	}

	remaining := lastFailure.Add(lp.lockoutDuration).Sub(lp.now())
	if remaining <= 0 {
		return false, 0, nil
	}
	return true, remaining, nil
}

// RecordAttempt stores the outcome of a login attempt. A success resets
// the failure count.
func (lp *LoginProtection) RecordAttempt(ctx context.Context, email, ip string, success bool) error {
	email = normaliseEmail(email)
	err := lp.queries.CreateLoginAttempt(ctx, store.CreateLoginAttemptParams{
		Email:     email,
		IpAddress: ip,
		Success:   success,
		CreatedAt: lp.now(),
	})
	if err != nil {
		return fmt.Errorf("recording login attempt: %w", err)
	}
	slog.Debug("login attempt recorded", "email", email, "success", success)
	return nil
}

// RemainingAttempts returns how many failures are left before lockout.
func (lp *LoginProtection) RemainingAttempts(ctx context.Context, email string) (int, error) {
	failures, _, err := lp.recentFailures(ctx, normaliseEmail(email))
	if err != nil {
		return 0, err
	}
	return max(lp.maxFailedAttempts-failures, 0), nil
}

// Middleware rate limits POST requests per client IP. Apply it to the
// login POST route.
func (lp *LoginProtection) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			ip := ClientIP(r)
			if !lp.CheckIPRateLimit(ip) {
				slog.Warn("login rate limit exceeded", "ip", ip)
				http.Error(w, i18n.T(GetLang(r), "auth.too_many_attempts"), http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
