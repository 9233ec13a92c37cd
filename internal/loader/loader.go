// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package loader fetches the records each public page needs.
package loader

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/qualitysolutions/qsite/internal/cache"
	"github.com/qualitysolutions/qsite/internal/session"
	"github.com/qualitysolutions/qsite/internal/store"
)

// Page sizes for the list loaders.
const (
	ArticleListLimit = 20
	ProductListLimit = 20
)

// DefaultProductTTL is how long the product list stays cached.
const DefaultProductTTL = 60 * time.Second

const productListKey = "products:active"

var (
	// ErrNotFound is returned by detail loaders for an unknown slug.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned when a loader needs a session and has none.
	ErrUnauthorized = errors.New("unauthorized")
)

// ArticlePage is everything the article detail page renders.
type ArticlePage struct {
	Article  store.ArticleWithAuthor
	Comments []store.CommentWithAuthor
}

// DashboardSummary holds the dashboard counters.
type DashboardSummary struct {
	Articles int64
	Products int64
	Users    int64
}

// Option configures a Loader.
type Option func(*Loader)

// WithProductTTL overrides DefaultProductTTL. Zero disables caching.
func WithProductTTL(ttl time.Duration) Option {
	return func(l *Loader) { l.productTTL = ttl }
}

// Loader runs the page queries.
type Loader struct {
	queries    *store.Queries
	productTTL time.Duration
	products   *cache.TypedCache[[]store.ProductSummary]
}

// New creates a Loader. productCache may be nil, in which case the product
// list is read from the store on every call.
func New(queries *store.Queries, productCache cache.Cache, opts ...Option) *Loader {
	l := &Loader{queries: queries, productTTL: DefaultProductTTL}
	for _, opt := range opts {
		opt(l)
	}
	if productCache != nil && l.productTTL > 0 {
		l.products = cache.NewTypedCache[[]store.ProductSummary](productCache, l.productTTL)
	}
	return l
}

// ArticleDetail loads an article with its author and approved comments,
// then counts the view. The returned Views value is the count before this
// view.
func (l *Loader) ArticleDetail(ctx context.Context, slug string) (*ArticlePage, error) {
	article, err := l.queries.GetArticleWithAuthorBySlug(ctx, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading article %q: %w", slug, err)
	}

	comments, err := l.queries.ListApprovedCommentsByArticle(ctx, article.ID)
	if err != nil {
		return nil, fmt.Errorf("loading comments for article %d: %w", article.ID, err)
	}

	if err := l.queries.IncrementArticleViews(ctx, article.ID); err != nil {
		return nil, fmt.Errorf("counting view for article %d: %w", article.ID, err)
	}

	return &ArticlePage{Article: article, Comments: comments}, nil
}

// ArticleList returns the newest published articles.
func (l *Loader) ArticleList(ctx context.Context) ([]store.ArticleSummary, error) {
	articles, err := l.queries.ListPublishedArticles(ctx, ArticleListLimit)
	if err != nil {
		return nil, fmt.Errorf("listing articles: %w", err)
	}
	return articles, nil
}

// ProductDetail loads the full product record.
func (l *Loader) ProductDetail(ctx context.Context, slug string) (*store.Product, error) {
	p, err := l.queries.GetProductBySlug(ctx, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading product %q: %w", slug, err)
	}
	return &p, nil
}

// ProductList returns the newest active products, served from the cache
// when possible.
func (l *Loader) ProductList(ctx context.Context) ([]store.ProductSummary, error) {
	load := func() (*[]store.ProductSummary, error) {
		products, err := l.queries.ListActiveProducts(ctx, ProductListLimit)
		if err != nil {
			return nil, fmt.Errorf("listing products: %w", err)
		}
		return &products, nil
	}

	if l.products == nil {
		products, err := load()
		if err != nil {
			return nil, err
		}
		return *products, nil
	}

	products, err := l.products.GetOrSet(ctx, productListKey, load)
	if err != nil {
		return nil, err
	}
	return *products, nil
}

// InvalidateProducts drops the cached product list.
func (l *Loader) InvalidateProducts(ctx context.Context) error {
	if l.products == nil {
		return nil
	}
	return l.products.Delete(ctx, productListKey)
}

// DashboardSummary counts articles, products and users. Nil claims fail
// before any query runs.
func (l *Loader) DashboardSummary(ctx context.Context, claims *session.Claims) (DashboardSummary, error) {
	if claims == nil {
		return DashboardSummary{}, ErrUnauthorized
	}

	var (
		s   DashboardSummary
		err error
	)
	if s.Articles, err = l.queries.CountArticles(ctx); err != nil {
		return DashboardSummary{}, fmt.Errorf("counting articles: %w", err)
	}
	if s.Products, err = l.queries.CountProducts(ctx); err != nil {
		return DashboardSummary{}, fmt.Errorf("counting products: %w", err)
	}
	if s.Users, err = l.queries.CountUsers(ctx); err != nil {
		return DashboardSummary{}, fmt.Errorf("counting users: %w", err)
	}
	return s, nil
}
