// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"time"

	"github.com/qualitysolutions/qsite/internal/cache"
)

const revokedKeyPrefix = "revoked:"

// Revocations is a denylist of token ids, kept until the token would
// have expired anyway.
type Revocations struct {
	cache cache.Cache
	now   func() time.Time
}

// NewRevocations creates a denylist stored in c.
func NewRevocations(c cache.Cache) *Revocations {
	return &Revocations{cache: c, now: time.Now}
}

// Revoke denylists the token described by claims. Tokens that already
// expired are ignored.
func (r *Revocations) Revoke(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.ID == "" {
		return nil
	}
	ttl := claims.Remaining(r.now())
	if ttl <= 0 {
		return nil
	}
	return r.cache.Set(ctx, revokedKeyPrefix+claims.ID, []byte{1}, ttl)
}

// IsRevoked reports whether the token id has been denylisted. A cache
// error is returned so callers can decide to fail closed.
func (r *Revocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	_, err := r.cache.Get(ctx, revokedKeyPrefix+jti)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, cache.ErrCacheMiss):
		return false, nil
	default:
		return false, err
	}
}
