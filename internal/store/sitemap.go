// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

// SitemapEntry is a public URL slug with its last modification time.
type SitemapEntry struct {
	Slug      string    `json:"slug"`
	UpdatedAt time.Time `json:"updated_at"`
}

const listPublishedArticleSlugs = `SELECT slug, updated_at FROM articles
WHERE published = 1
ORDER BY published_at DESC, id DESC`

func (q *Queries) ListPublishedArticleSlugs(ctx context.Context) ([]SitemapEntry, error) {
	return q.listSitemapEntries(ctx, listPublishedArticleSlugs)
}

const listActiveProductSlugs = `SELECT slug, updated_at FROM products
WHERE status = 'ACTIVE'
ORDER BY created_at DESC, id DESC`

func (q *Queries) ListActiveProductSlugs(ctx context.Context) ([]SitemapEntry, error) {
	return q.listSitemapEntries(ctx, listActiveProductSlugs)
}

func (q *Queries) listSitemapEntries(ctx context.Context, query string) ([]SitemapEntry, error) {
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := []SitemapEntry{}
	for rows.Next() {
		var i SitemapEntry
		if err := rows.Scan(&i.Slug, &i.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
