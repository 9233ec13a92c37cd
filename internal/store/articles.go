// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/qualitysolutions/qsite/internal/model"
)

const createArticle = `INSERT INTO articles (
    slug, title, excerpt, content, category, tags, status, published, published_at,
    views, reading_time, featured_image, seo_title, seo_description, author_id, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

type CreateArticleParams struct {
	Slug           string              `json:"slug"`
	Title          string              `json:"title"`
	Excerpt        string              `json:"excerpt"`
	Content        string              `json:"content"`
	Category       string              `json:"category"`
	Tags           model.StringList    `json:"tags"`
	Status         model.ArticleStatus `json:"status"`
	Published      bool                `json:"published"`
	PublishedAt    sql.NullTime        `json:"published_at"`
	Views          int64               `json:"views"`
	ReadingTime    int64               `json:"reading_time"`
	FeaturedImage  sql.NullString      `json:"featured_image"`
	SeoTitle       sql.NullString      `json:"seo_title"`
	SeoDescription sql.NullString      `json:"seo_description"`
	AuthorID       int64               `json:"author_id"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// CreateArticle inserts an article and returns its id.
func (q *Queries) CreateArticle(ctx context.Context, arg CreateArticleParams) (int64, error) {
	if arg.Status == "" {
		arg.Status = model.ArticleStatusDraft
	}
	if arg.PublishedAt.Valid {
		arg.PublishedAt.Time = arg.PublishedAt.Time.UTC()
	}
	res, err := q.db.ExecContext(ctx, createArticle,
		arg.Slug,
		arg.Title,
		arg.Excerpt,
		arg.Content,
		arg.Category,
		arg.Tags,
		string(arg.Status),
		arg.Published,
		arg.PublishedAt,
		arg.Views,
		arg.ReadingTime,
		arg.FeaturedImage,
		arg.SeoTitle,
		arg.SeoDescription,
		arg.AuthorID,
		arg.CreatedAt.UTC(),
		arg.UpdatedAt.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const getArticleWithAuthorBySlug = `SELECT
    a.id, a.slug, a.title, a.excerpt, a.content, a.category, a.tags, a.status, a.published,
    a.published_at, a.views, a.reading_time, a.featured_image, a.seo_title, a.seo_description,
    a.author_id, a.created_at, a.updated_at,
    u.name, u.image
FROM articles a
JOIN users u ON u.id = a.author_id
WHERE a.slug = ?`

// ArticleWithAuthor is an article joined with the public fields of its author.
type ArticleWithAuthor struct {
	Article
	AuthorName  string         `json:"author_name"`
	AuthorImage sql.NullString `json:"author_image"`
}

func (q *Queries) GetArticleWithAuthorBySlug(ctx context.Context, slug string) (ArticleWithAuthor, error) {
	row := q.db.QueryRowContext(ctx, getArticleWithAuthorBySlug, slug)
	var i ArticleWithAuthor
	err := row.Scan(
		&i.ID,
		&i.Slug,
		&i.Title,
		&i.Excerpt,
		&i.Content,
		&i.Category,
		&i.Tags,
		&i.Status,
		&i.Published,
		&i.PublishedAt,
		&i.Views,
		&i.ReadingTime,
		&i.FeaturedImage,
		&i.SeoTitle,
		&i.SeoDescription,
		&i.AuthorID,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.AuthorName,
		&i.AuthorImage,
	)
	return i, err
}

const incrementArticleViews = `UPDATE articles SET views = views + 1 WHERE id = ?`

// IncrementArticleViews bumps the view counter in a single statement.
func (q *Queries) IncrementArticleViews(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, incrementArticleViews, id)
	return err
}

const listPublishedArticles = `SELECT
    a.id, a.title, a.slug, a.excerpt, a.category, a.featured_image, a.views,
    a.reading_time, a.published_at, u.name, u.image
FROM articles a
JOIN users u ON u.id = a.author_id
WHERE a.published = 1
ORDER BY a.published_at DESC, a.id DESC
LIMIT ?`

// ArticleSummary is the list projection of an article.
type ArticleSummary struct {
	ID            int64          `json:"id"`
	Title         string         `json:"title"`
	Slug          string         `json:"slug"`
	Excerpt       string         `json:"excerpt"`
	Category      string         `json:"category"`
	FeaturedImage sql.NullString `json:"featured_image"`
	Views         int64          `json:"views"`
	ReadingTime   int64          `json:"reading_time"`
	PublishedAt   sql.NullTime   `json:"published_at"`
	AuthorName    string         `json:"author_name"`
	AuthorImage   sql.NullString `json:"author_image"`
}

func (q *Queries) ListPublishedArticles(ctx context.Context, limit int64) ([]ArticleSummary, error) {
	rows, err := q.db.QueryContext(ctx, listPublishedArticles, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := []ArticleSummary{}
	for rows.Next() {
		var i ArticleSummary
		if err := rows.Scan(
			&i.ID,
			&i.Title,
			&i.Slug,
			&i.Excerpt,
			&i.Category,
			&i.FeaturedImage,
			&i.Views,
			&i.ReadingTime,
			&i.PublishedAt,
			&i.AuthorName,
			&i.AuthorImage,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countArticles = `SELECT COUNT(*) FROM articles`

func (q *Queries) CountArticles(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countArticles)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const deleteAllArticles = `DELETE FROM articles`

func (q *Queries) DeleteAllArticles(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllArticles)
	return err
}
