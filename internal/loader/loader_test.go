// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package loader

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qualitysolutions/qsite/internal/cache"
	"github.com/qualitysolutions/qsite/internal/model"
	"github.com/qualitysolutions/qsite/internal/session"
	"github.com/qualitysolutions/qsite/internal/store"
	"github.com/qualitysolutions/qsite/internal/testutil"
)

// countingDB counts every statement sent to the wrapped database.
type countingDB struct {
	db      *sql.DB
	queries atomic.Int64
}

func (c *countingDB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	c.queries.Add(1)
	return c.db.ExecContext(ctx, query, args...)
}

func (c *countingDB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	c.queries.Add(1)
	return c.db.QueryContext(ctx, query, args...)
}

func (c *countingDB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	c.queries.Add(1)
	return c.db.QueryRowContext(ctx, query, args...)
}

func viewsOf(t *testing.T, db *sql.DB, slug string) int64 {
	t.Helper()
	var views int64
	require.NoError(t, db.QueryRow(`SELECT views FROM articles WHERE slug = ?`, slug).Scan(&views))
	return views
}

func TestArticleDetail(t *testing.T) {
	db := testutil.SeededDB(t)
	l := New(store.New(db), nil)
	ctx := context.Background()

	before := viewsOf(t, db, "water-chemistry-basics")

	page, err := l.ArticleDetail(ctx, "water-chemistry-basics")
	require.NoError(t, err)

	assert.Equal(t, "water-chemistry-basics", page.Article.Slug)
	assert.Equal(t, "سعيد الحربي", page.Article.AuthorName)
	assert.True(t, page.Article.AuthorImage.Valid)
	assert.Equal(t, before, page.Article.Views, "returned views are the pre-increment count")
	require.Len(t, page.Comments, 1)
	assert.Equal(t, "خالد العتيبي", page.Comments[0].AuthorName)

	assert.Equal(t, before+1, viewsOf(t, db, "water-chemistry-basics"))
}

func TestArticleDetail_TwoFetchesAddTwo(t *testing.T) {
	db := testutil.SeededDB(t)
	l := New(store.New(db), nil)
	ctx := context.Background()

	before := viewsOf(t, db, "modern-ro-techniques")

	var wg sync.WaitGroup
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.ArticleDetail(ctx, "modern-ro-techniques")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, before+2, viewsOf(t, db, "modern-ro-techniques"))
}

func TestArticleDetail_NotFoundNoIncrement(t *testing.T) {
	db := testutil.SeededDB(t)
	counter := &countingDB{db: db}
	l := New(store.New(counter), nil)

	var total int64
	require.NoError(t, db.QueryRow(`SELECT SUM(views) FROM articles`).Scan(&total))

	_, err := l.ArticleDetail(context.Background(), "no-such-article")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int64(1), counter.queries.Load(), "only the lookup should run")

	var after int64
	require.NoError(t, db.QueryRow(`SELECT SUM(views) FROM articles`).Scan(&after))
	assert.Equal(t, total, after)
}

func TestArticleDetail_HidesUnapprovedComments(t *testing.T) {
	db := testutil.SeededDB(t)
	q := store.New(db)
	ctx := context.Background()

	user, err := q.GetUserByEmail(ctx, "user@qualitysolutions.com")
	require.NoError(t, err)

	// The third article has no seeded comment; give it only a pending one.
	var articleID int64
	require.NoError(t, db.QueryRow(`SELECT id FROM articles WHERE slug = ?`, "treatment-plant-management").Scan(&articleID))
	_, err = q.CreateComment(ctx, store.CreateCommentParams{
		ArticleID: articleID, AuthorID: user.ID, Content: "بانتظار المراجعة", Approved: false, CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	page, err := New(q, nil).ArticleDetail(ctx, "treatment-plant-management")
	require.NoError(t, err)
	assert.Empty(t, page.Comments)
}

func TestArticleList(t *testing.T) {
	db := testutil.SeededDB(t)
	l := New(store.New(db), nil)

	articles, err := l.ArticleList(context.Background())
	require.NoError(t, err)
	require.Len(t, articles, 5)

	for i := 1; i < len(articles); i++ {
		assert.False(t, articles[i].PublishedAt.Time.After(articles[i-1].PublishedAt.Time),
			"articles must be newest first")
	}
	assert.Equal(t, "سعيد الحربي", articles[0].AuthorName)
}

func TestArticleList_Limit(t *testing.T) {
	db := testutil.TestDB(t)
	q := store.New(db)
	ctx := context.Background()

	author, err := q.CreateUser(ctx, store.CreateUserParams{
		Email: "author@example.com", Name: "Author", Role: model.RoleAuthor, Status: model.UserStatusActive,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	})
	require.NoError(t, err)

	base := time.Now().Add(-48 * time.Hour)
	for i := range 25 {
		at := base.Add(time.Duration(i) * time.Minute)
		_, err := q.CreateArticle(ctx, store.CreateArticleParams{
			Slug: "a-" + string(rune('a'+i)), Title: "t", Content: "c", Category: "SCIENCE",
			Status: model.ArticleStatusPublished, Published: true,
			PublishedAt: sql.NullTime{Time: at, Valid: true},
			AuthorID:    author.ID, CreatedAt: at, UpdatedAt: at,
		})
		require.NoError(t, err)
	}

	articles, err := New(q, nil).ArticleList(ctx)
	require.NoError(t, err)
	assert.Len(t, articles, ArticleListLimit)
	assert.Equal(t, "a-y", articles[0].Slug)
}

func TestProductDetail(t *testing.T) {
	db := testutil.SeededDB(t)
	l := New(store.New(db), nil)
	ctx := context.Background()

	p, err := l.ProductDetail(ctx, "ro-membrane-4040")
	require.NoError(t, err)
	assert.Equal(t, "غشاء RO 4040", p.Name)
	assert.Equal(t, 2800.0, p.Price)
	assert.True(t, p.OriginalPrice.Valid)
	assert.NotEmpty(t, p.Specifications)
	assert.NotEmpty(t, p.Features)
	assert.True(t, p.InStock())

	_, err = l.ProductDetail(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProductList_ActiveOnly(t *testing.T) {
	db := testutil.SeededDB(t)
	_, err := db.Exec(`UPDATE products SET status = 'INACTIVE' WHERE slug = ?`, "70-chlorine-granules")
	require.NoError(t, err)

	products, err := New(store.New(db), nil).ProductList(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 4)
	for _, p := range products {
		assert.NotEqual(t, "70-chlorine-granules", p.Slug)
	}
}

func TestProductList_Cached(t *testing.T) {
	db := testutil.SeededDB(t)
	counter := &countingDB{db: db}
	mem := cache.NewSimpleMemoryCache(time.Hour)
	t.Cleanup(func() { _ = mem.Close() })

	l := New(store.New(counter), mem, WithProductTTL(time.Minute))
	ctx := context.Background()

	first, err := l.ProductList(ctx)
	require.NoError(t, err)
	require.Len(t, first, 5)
	assert.Equal(t, int64(1), counter.queries.Load())

	second, err := l.ProductList(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counter.queries.Load(), "second call should be served from cache")
	assert.Equal(t, first, second)

	require.NoError(t, l.InvalidateProducts(ctx))
	_, err = l.ProductList(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counter.queries.Load())
}

func TestProductList_ZeroTTLDisablesCache(t *testing.T) {
	db := testutil.SeededDB(t)
	counter := &countingDB{db: db}
	mem := cache.NewSimpleMemoryCache(time.Hour)
	t.Cleanup(func() { _ = mem.Close() })

	l := New(store.New(counter), mem, WithProductTTL(0))
	for range 3 {
		_, err := l.ProductList(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, int64(3), counter.queries.Load())
}

func TestDashboardSummary(t *testing.T) {
	db := testutil.SeededDB(t)
	l := New(store.New(db), nil)

	claims := &session.Claims{Role: model.RoleAdmin}
	s, err := l.DashboardSummary(context.Background(), claims)
	require.NoError(t, err)
	assert.Equal(t, DashboardSummary{Articles: 5, Products: 5, Users: 4}, s)
}

func TestDashboardSummary_NoSessionRunsNoQuery(t *testing.T) {
	db := testutil.SeededDB(t)
	counter := &countingDB{db: db}
	l := New(store.New(counter), nil)

	_, err := l.DashboardSummary(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Zero(t, counter.queries.Load())
}

func TestStoreErrorsPropagate(t *testing.T) {
	db := testutil.TestDB(t)
	l := New(store.New(db), nil)
	require.NoError(t, db.Close())
	ctx := context.Background()

	_, err := l.ArticleDetail(ctx, "x")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))

	_, err = l.ArticleList(ctx)
	assert.Error(t, err)

	_, err = l.ProductList(ctx)
	assert.Error(t, err)

	_, err = l.DashboardSummary(ctx, &session.Claims{Role: model.RoleAdmin})
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnauthorized))
}
