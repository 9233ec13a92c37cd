// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/qualitysolutions/qsite/internal/auth"
	"github.com/qualitysolutions/qsite/internal/i18n"
	"github.com/qualitysolutions/qsite/internal/middleware"
	"github.com/qualitysolutions/qsite/internal/model"
	"github.com/qualitysolutions/qsite/internal/render"
	"github.com/qualitysolutions/qsite/internal/service"
	"github.com/qualitysolutions/qsite/internal/session"
	"github.com/qualitysolutions/qsite/internal/store"
)

// LoginData is the data for the login page.
type LoginData struct {
	Next string
}

// AuthHandler handles authentication routes.
type AuthHandler struct {
	queries         *store.Queries
	authenticator   *auth.Authenticator
	tokens          *session.TokenIssuer
	revocations     *session.Revocations
	loginProtection *middleware.LoginProtection
	sessionManager  *scs.SessionManager
	renderer        *render.Renderer
	events          *service.EventService
	logger          *slog.Logger
}

// AuthDeps bundles the collaborators of AuthHandler.
type AuthDeps struct {
	DB              store.DBTX
	Authenticator   *auth.Authenticator
	Tokens          *session.TokenIssuer
	Revocations     *session.Revocations
	LoginProtection *middleware.LoginProtection
	SessionManager  *scs.SessionManager
	Renderer        *render.Renderer
	Events          *service.EventService
	Logger          *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(deps AuthDeps) *AuthHandler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		queries:         store.New(deps.DB),
		authenticator:   deps.Authenticator,
		tokens:          deps.Tokens,
		revocations:     deps.Revocations,
		loginProtection: deps.LoginProtection,
		sessionManager:  deps.SessionManager,
		renderer:        deps.Renderer,
		events:          deps.Events,
		logger:          logger,
	}
}

// postLoginTarget picks where a signed-in user goes: staff to the
// dashboard, everyone else back to next or the home page.
func postLoginTarget(role model.Role, next string) string {
	if role.IsStaff() {
		return RouteDashboard
	}
	return safeRedirect(next, RouteRoot)
}

// loginURL keeps the next parameter across a failed attempt.
func loginURL(next string) string {
	if next = safeRedirect(next, ""); next == "" {
		return RouteLogin
	}
	return middleware.LoginRedirect(next)
}

// LoginForm renders the login page. Signed-in users are sent on.
// GET /auth/login
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	next := r.URL.Query().Get("next")
	if claims := middleware.GetClaims(r); claims != nil {
		http.Redirect(w, r, postLoginTarget(claims.Role, next), http.StatusSeeOther)
		return
	}

	lang := middleware.GetLang(r)
	renderPage(w, r, h.renderer, tmplLogin, render.TemplateData{
		Title: i18n.T(lang, "auth.login_title"),
		Data:  LoginData{Next: safeRedirect(next, "")},
	})
}

// Login handles the login form submission.
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lang := middleware.GetLang(r)

	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, RouteLogin, i18n.T(lang, "auth.invalid_credentials"))
		return
	}

	email := r.PostFormValue("email")
	password := r.PostFormValue("password")
	next := r.PostFormValue("next")
	clientIP := middleware.ClientIP(r)

	if h.loginProtection != nil {
		locked, remaining, err := h.loginProtection.IsAccountLocked(ctx, email)
		if err != nil {
			serverError(w, r, h.renderer, "checking account lockout", "error", err)
			return
		}
		if locked {
			_ = h.events.LogAuthEvent(ctx, model.EventLevelWarning, "Login attempt on locked account", nil, clientIP,
				map[string]any{"email": email})
			minutes := int(math.Ceil(remaining.Minutes()))
			flashError(w, r, h.renderer, loginURL(next), i18n.T(lang, "auth.account_locked", minutes))
			return
		}
	}

	identity, err := h.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		kind, ok := auth.IsFailure(err)
		if !ok {
			serverError(w, r, h.renderer, "authenticating", "error", err)
			return
		}

		h.logger.Debug("login rejected", "kind", kind, "ip", clientIP)
		if h.loginProtection != nil {
			if err := h.loginProtection.RecordAttempt(ctx, email, clientIP, false); err != nil {
				h.logger.Error("recording failed login", "error", err)
			}
		}
		_ = h.events.LogAuthEvent(ctx, model.EventLevelWarning, "Login failed", nil, clientIP,
			map[string]any{"email": email, "reason": string(kind)})

		flashError(w, r, h.renderer, loginURL(next), i18n.T(lang, "auth.invalid_credentials"))
		return
	}

	if h.loginProtection != nil {
		if err := h.loginProtection.RecordAttempt(ctx, identity.Email, clientIP, true); err != nil {
			h.logger.Error("recording successful login", "error", err)
		}
	}

	if err := h.queries.UpdateUserLastLogin(ctx, store.UpdateUserLastLoginParams{
		LastLoginAt: time.Now(),
		ID:          identity.ID,
	}); err != nil {
		h.logger.Error("failed to update last login time", "error", err, "user_id", identity.ID)
	}

	token, expiresAt, err := h.tokens.Issue(identity)
	if err != nil {
		serverError(w, r, h.renderer, "issuing session token", "error", err)
		return
	}

	// Fresh flash session id on privilege change.
	if h.sessionManager != nil {
		if err := h.sessionManager.RenewToken(ctx); err != nil {
			serverError(w, r, h.renderer, "session renewal error", "error", err)
			return
		}
	}

	h.tokens.SetCookie(w, token, expiresAt)

	h.logger.Info("user logged in", "user_id", identity.ID, "role", identity.Role)
	_ = h.events.LogAuthEvent(ctx, model.EventLevelInfo, "User logged in", &identity.ID, clientIP,
		map[string]any{"email": identity.Email})

	flashSuccess(w, r, h.renderer, postLoginTarget(identity.Role, next), i18n.T(lang, "auth.welcome", identity.Name))
}

// Logout revokes the session token and clears its cookie.
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lang := middleware.GetLang(r)

	if claims := middleware.GetClaims(r); claims != nil {
		if h.revocations != nil {
			if err := h.revocations.Revoke(ctx, claims); err != nil {
				h.logger.Error("revoking session token", "error", err, "user_id", claims.UserID())
			}
		}
		userID := claims.UserID()
		_ = h.events.LogAuthEvent(ctx, model.EventLevelInfo, "User logged out", &userID, middleware.ClientIP(r), nil)
		h.logger.Info("user logged out", "user_id", userID)
	}

	h.tokens.ClearCookie(w)
	flashSuccess(w, r, h.renderer, RouteRoot, i18n.T(lang, "auth.logged_out"))
}
