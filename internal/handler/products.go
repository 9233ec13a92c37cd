// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/qualitysolutions/qsite/internal/i18n"
	"github.com/qualitysolutions/qsite/internal/loader"
	"github.com/qualitysolutions/qsite/internal/middleware"
	"github.com/qualitysolutions/qsite/internal/render"
	"github.com/qualitysolutions/qsite/internal/store"
	"github.com/qualitysolutions/qsite/internal/util"
)

// ProductListData is the data for the product list page.
type ProductListData struct {
	Products []store.ProductSummary
}

// ProductDetailData is the data for the product page.
type ProductDetailData struct {
	Product *store.Product
}

// ProductList renders the active products.
// GET /products
func (h *FrontendHandler) ProductList(w http.ResponseWriter, r *http.Request) {
	products, err := h.loader.ProductList(r.Context())
	if err != nil {
		serverError(w, r, h.renderer, "loading product list", "error", err)
		return
	}

	lang := middleware.GetLang(r)
	renderPage(w, r, h.renderer, tmplProducts, render.TemplateData{
		Title: i18n.T(lang, "products.title"),
		Data:  ProductListData{Products: products},
	})
}

// ProductDetail renders a product with its specifications and features.
// GET /products/{slug}
func (h *FrontendHandler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if !util.IsValidSlug(slug) {
		notFound(w, r, h.renderer)
		return
	}

	p, err := h.loader.ProductDetail(r.Context(), slug)
	if errors.Is(err, loader.ErrNotFound) {
		notFound(w, r, h.renderer)
		return
	}
	if err != nil {
		serverError(w, r, h.renderer, "loading product", "slug", slug, "error", err)
		return
	}

	renderPage(w, r, h.renderer, tmplProduct, render.TemplateData{
		Title: p.Name,
		Data:  ProductDetailData{Product: p},
	})
}
