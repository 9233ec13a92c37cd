// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/qualitysolutions/qsite/internal/i18n"
	"github.com/qualitysolutions/qsite/internal/loader"
	"github.com/qualitysolutions/qsite/internal/middleware"
	"github.com/qualitysolutions/qsite/internal/model"
	"github.com/qualitysolutions/qsite/internal/render"
	"github.com/qualitysolutions/qsite/internal/store"
	"github.com/qualitysolutions/qsite/internal/util"
)

// ArticleListData is the data for the article list page.
type ArticleListData struct {
	Articles []store.ArticleSummary
}

// ArticleDetailData is the data for the article page.
type ArticleDetailData struct {
	Page       *loader.ArticlePage
	CanComment bool
	LoginURL   string
}

// ArticleList renders the newest published articles.
// GET /articles
func (h *FrontendHandler) ArticleList(w http.ResponseWriter, r *http.Request) {
	articles, err := h.loader.ArticleList(r.Context())
	if err != nil {
		serverError(w, r, h.renderer, "loading article list", "error", err)
		return
	}

	lang := middleware.GetLang(r)
	renderPage(w, r, h.renderer, tmplArticles, render.TemplateData{
		Title: i18n.T(lang, "articles.title"),
		Data:  ArticleListData{Articles: articles},
	})
}

// ArticleDetail renders one article with its approved comments and counts
// the view.
// GET /articles/{slug}
func (h *FrontendHandler) ArticleDetail(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if !util.IsValidSlug(slug) {
		notFound(w, r, h.renderer)
		return
	}

	page, err := h.loader.ArticleDetail(r.Context(), slug)
	if errors.Is(err, loader.ErrNotFound) {
		notFound(w, r, h.renderer)
		return
	}
	if err != nil {
		serverError(w, r, h.renderer, "loading article", "slug", slug, "error", err)
		return
	}

	title := page.Article.Title
	if page.Article.SeoTitle.Valid && page.Article.SeoTitle.String != "" {
		title = page.Article.SeoTitle.String
	}

	renderPage(w, r, h.renderer, tmplArticle, render.TemplateData{
		Title: title,
		Data: ArticleDetailData{
			Page:       page,
			CanComment: middleware.GetClaims(r) != nil,
			LoginURL:   middleware.LoginRedirect(r.URL.Path),
		},
	})
}

// CommentCreate stores a comment pending moderation.
// POST /articles/{slug}/comments
func (h *FrontendHandler) CommentCreate(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	slug := chi.URLParam(r, "slug")
	if !util.IsValidSlug(slug) {
		notFound(w, r, h.renderer)
		return
	}
	articleURL := RouteArticles + "/" + slug

	claims := middleware.GetClaims(r)
	if claims == nil {
		http.Redirect(w, r, middleware.LoginRedirect(articleURL), http.StatusSeeOther)
		return
	}

	article, err := h.queries.GetArticleWithAuthorBySlug(r.Context(), slug)
	if err != nil {
		if isNoRows(err) {
			notFound(w, r, h.renderer)
			return
		}
		serverError(w, r, h.renderer, "loading article for comment", "slug", slug, "error", err)
		return
	}

	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, articleURL, i18n.T(lang, "comments.invalid", commentMinLength, commentMaxLength))
		return
	}

	content := render.PlainText(r.FormValue("content"))
	if n := utf8.RuneCountInString(content); n < commentMinLength || n > commentMaxLength {
		flashError(w, r, h.renderer, articleURL+"#comments", i18n.T(lang, "comments.invalid", commentMinLength, commentMaxLength))
		return
	}

	userID := claims.UserID()
	id, err := h.queries.CreateComment(r.Context(), store.CreateCommentParams{
		ArticleID: article.ID,
		AuthorID:  userID,
		Content:   content,
		Approved:  false,
		CreatedAt: time.Now(),
	})
	if err != nil {
		serverError(w, r, h.renderer, "creating comment", "article_id", article.ID, "error", err)
		return
	}

	_ = h.events.LogContentEvent(r.Context(), model.EventLevelInfo, "Comment submitted for review", &userID,
		middleware.ClientIP(r), map[string]any{"comment_id": id, "article": slug})

	flashSuccess(w, r, h.renderer, articleURL+"#comments", i18n.T(lang, "comments.pending"))
}
