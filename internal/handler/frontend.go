// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides the HTTP handlers of the site.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/qualitysolutions/qsite/internal/i18n"
	"github.com/qualitysolutions/qsite/internal/loader"
	"github.com/qualitysolutions/qsite/internal/middleware"
	"github.com/qualitysolutions/qsite/internal/render"
	"github.com/qualitysolutions/qsite/internal/service"
	"github.com/qualitysolutions/qsite/internal/store"
)

// FrontendHandler serves the public pages and the dashboard.
type FrontendHandler struct {
	loader   *loader.Loader
	queries  *store.Queries
	renderer *render.Renderer
	events   *service.EventService
	logger   *slog.Logger
}

// NewFrontendHandler creates a new FrontendHandler. A nil logger uses
// slog.Default.
func NewFrontendHandler(l *loader.Loader, db store.DBTX, renderer *render.Renderer, events *service.EventService, logger *slog.Logger) *FrontendHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FrontendHandler{
		loader:   l,
		queries:  store.New(db),
		renderer: renderer,
		events:   events,
		logger:   logger,
	}
}

// Home renders the landing page.
// GET /
func (h *FrontendHandler) Home(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	renderPage(w, r, h.renderer, tmplHome, render.TemplateData{
		Title: i18n.T(lang, "home.title"),
	})
}

// NotFound renders the themed 404 page for unmatched routes.
func (h *FrontendHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	notFound(w, r, h.renderer)
}
