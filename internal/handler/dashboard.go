// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"

	"github.com/qualitysolutions/qsite/internal/i18n"
	"github.com/qualitysolutions/qsite/internal/loader"
	"github.com/qualitysolutions/qsite/internal/middleware"
	"github.com/qualitysolutions/qsite/internal/model"
	"github.com/qualitysolutions/qsite/internal/render"
	"github.com/qualitysolutions/qsite/internal/store"
)

// DashboardData is the data for the dashboard page.
type DashboardData struct {
	Summary loader.DashboardSummary
	// Events is only filled for administrators.
	Events []store.Event
}

// Dashboard renders the aggregate counts.
// GET /dashboard
func (h *FrontendHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)

	summary, err := h.loader.DashboardSummary(r.Context(), claims)
	if errors.Is(err, loader.ErrUnauthorized) {
		http.Redirect(w, r, middleware.LoginRedirect(RouteDashboard), http.StatusSeeOther)
		return
	}
	if err != nil {
		serverError(w, r, h.renderer, "loading dashboard", "error", err)
		return
	}

	data := DashboardData{Summary: summary}
	if claims.Role == model.RoleAdmin {
		events, err := h.events.RecentEvents(r.Context(), dashboardEventLimit)
		if err != nil {
			h.logger.Error("loading recent events", "error", err)
		}
		data.Events = events
	}

	lang := middleware.GetLang(r)
	renderPage(w, r, h.renderer, tmplDashboard, render.TemplateData{
		Title: i18n.T(lang, "dashboard.title"),
		Data:  data,
	})
}
