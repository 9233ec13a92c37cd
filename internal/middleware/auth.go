// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// language detection, and request hardening.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/qualitysolutions/qsite/internal/session"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys.
const (
	ContextKeyClaims   ContextKey = "claims"
	ContextKeyLanguage ContextKey = "language"
)

// LoginPath is where RequireSession sends anonymous visitors.
const LoginPath = "/auth/login"

// SessionAuth reads the session token cookie and puts valid claims into
// the request context.
type SessionAuth struct {
	tokens      *session.TokenIssuer
	revocations *session.Revocations
	logger      *slog.Logger
}

// NewSessionAuth creates the session middleware. revocations may be nil.
func NewSessionAuth(tokens *session.TokenIssuer, revocations *session.Revocations, logger *slog.Logger) *SessionAuth {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionAuth{tokens: tokens, revocations: revocations, logger: logger}
}

// OptionalSession attaches claims when the request carries a valid token.
// Invalid, expired and revoked tokens are treated as anonymous and their
// cookie is cleared.
func (sa *SessionAuth) OptionalSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := session.TokenFromRequest(r)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := sa.tokens.Parse(raw)
		if err != nil {
			if !errors.Is(err, session.ErrTokenExpired) {
				sa.logger.Debug("rejected session token", "error", err, "ip", ClientIP(r))
			}
			sa.tokens.ClearCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		if sa.revocations != nil {
			revoked, err := sa.revocations.IsRevoked(r.Context(), claims.ID)
			if err != nil {
				sa.logger.Error("checking token revocation", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if revoked {
				sa.tokens.ClearCookie(w)
				next.ServeHTTP(w, r)
				return
			}
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// RequireSession redirects to the login page when no claims are present.
// It must run after OptionalSession.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetClaims(r) == nil {
			http.Redirect(w, r, LoginRedirect(r.URL.RequestURI()), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LoginRedirect builds the login URL that returns to next afterwards.
func LoginRedirect(next string) string {
	if next == "" || next == "/" {
		return LoginPath
	}
	return LoginPath + "?next=" + url.QueryEscape(next)
}

// WithClaims returns ctx carrying claims.
func WithClaims(ctx context.Context, claims *session.Claims) context.Context {
	return context.WithValue(ctx, ContextKeyClaims, claims)
}

// GetClaims returns the session claims of the request, or nil.
func GetClaims(r *http.Request) *session.Claims {
	claims, _ := r.Context().Value(ContextKeyClaims).(*session.Claims)
	return claims
}
