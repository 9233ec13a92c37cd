// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/qualitysolutions/qsite/internal/i18n"
	"github.com/qualitysolutions/qsite/internal/middleware"
	"github.com/qualitysolutions/qsite/internal/render"
	"github.com/qualitysolutions/qsite/internal/session"
)

// flashAndRedirect sets a flash message and redirects with 303.
func flashAndRedirect(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, target, key, message string) {
	renderer.SetFlash(r, key, message)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// flashError sets an error flash message and redirects to the given URL.
func flashError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, target, message string) {
	flashAndRedirect(w, r, renderer, target, session.FlashError, message)
}

// flashSuccess sets a success flash message and redirects to the given URL.
func flashSuccess(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, target, message string) {
	flashAndRedirect(w, r, renderer, target, session.FlashSuccess, message)
}

// renderPage renders name with status 200, falling back to the error page
// when the template fails.
func renderPage(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, name string, data render.TemplateData) {
	if err := renderer.Render(w, r, http.StatusOK, name, data); err != nil {
		serverError(w, r, renderer, "render failed", "template", name, "error", err)
	}
}

// notFound renders the themed 404 page.
func notFound(w http.ResponseWriter, r *http.Request, renderer *render.Renderer) {
	lang := middleware.GetLang(r)
	err := renderer.Render(w, r, http.StatusNotFound, tmplNotFound, render.TemplateData{
		Title: i18n.T(lang, "error.not_found_title"),
	})
	if err != nil {
		slog.Error("rendering 404 page", "error", err)
		http.NotFound(w, r)
	}
}

// serverError logs the cause and renders the 500 page. Details never reach
// the client.
func serverError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, logMsg string, args ...any) {
	slog.Error(logMsg, append(args, "path", r.URL.Path, "method", r.Method)...)

	lang := middleware.GetLang(r)
	err := renderer.Render(w, r, http.StatusInternalServerError, tmplServer, render.TemplateData{
		Title: i18n.T(lang, "error.server_title"),
	})
	if err != nil {
		http.Error(w, i18n.T(lang, "error.server"), http.StatusInternalServerError)
	}
}

// writeJSON writes v as a JSON response with status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// safeRedirect returns target when it is a local absolute path, otherwise
// fallback. Protocol-relative and backslash forms are rejected.
func safeRedirect(target, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/") ||
		strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fallback
	}
	u, err := url.Parse(target)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return target
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
