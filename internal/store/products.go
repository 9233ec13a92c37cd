// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/qualitysolutions/qsite/internal/model"
)

const createProduct = `INSERT INTO products (
    slug, sku, name, description, short_description, price, original_price, category, subcategory,
    images, specifications, features, stock, status, rating, review_count, weight, dimensions,
    created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

type CreateProductParams struct {
	Slug             string               `json:"slug"`
	Sku              string               `json:"sku"`
	Name             string               `json:"name"`
	Description      string               `json:"description"`
	ShortDescription string               `json:"short_description"`
	Price            float64              `json:"price"`
	OriginalPrice    sql.NullFloat64      `json:"original_price"`
	Category         string               `json:"category"`
	Subcategory      string               `json:"subcategory"`
	Images           model.StringList     `json:"images"`
	Specifications   model.StringMap      `json:"specifications"`
	Features         model.StringList     `json:"features"`
	Stock            int64                `json:"stock"`
	Status           model.ProductStatus  `json:"status"`
	Rating           float64              `json:"rating"`
	ReviewCount      int64                `json:"review_count"`
	Weight           sql.NullFloat64      `json:"weight"`
	Dimensions       model.NullDimensions `json:"dimensions"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) (int64, error) {
	if arg.Status == "" {
		arg.Status = model.ProductStatusActive
	}
	res, err := q.db.ExecContext(ctx, createProduct,
		arg.Slug,
		arg.Sku,
		arg.Name,
		arg.Description,
		arg.ShortDescription,
		arg.Price,
		arg.OriginalPrice,
		arg.Category,
		arg.Subcategory,
		arg.Images,
		arg.Specifications,
		arg.Features,
		arg.Stock,
		string(arg.Status),
		arg.Rating,
		arg.ReviewCount,
		arg.Weight,
		arg.Dimensions,
		arg.CreatedAt.UTC(),
		arg.UpdatedAt.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const getProductBySlug = `SELECT
    id, slug, sku, name, description, short_description, price, original_price, category, subcategory,
    images, specifications, features, stock, status, rating, review_count, weight, dimensions,
    created_at, updated_at
FROM products WHERE slug = ?`

func (q *Queries) GetProductBySlug(ctx context.Context, slug string) (Product, error) {
	row := q.db.QueryRowContext(ctx, getProductBySlug, slug)
	var i Product
	err := row.Scan(
		&i.ID,
		&i.Slug,
		&i.Sku,
		&i.Name,
		&i.Description,
		&i.ShortDescription,
		&i.Price,
		&i.OriginalPrice,
		&i.Category,
		&i.Subcategory,
		&i.Images,
		&i.Specifications,
		&i.Features,
		&i.Stock,
		&i.Status,
		&i.Rating,
		&i.ReviewCount,
		&i.Weight,
		&i.Dimensions,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listActiveProducts = `SELECT
    id, name, slug, short_description, price, original_price, category, images, rating, review_count, stock
FROM products
WHERE status = 'ACTIVE'
ORDER BY created_at DESC, id DESC
LIMIT ?`

// ProductSummary is the list projection of a product.
type ProductSummary struct {
	ID               int64            `json:"id"`
	Name             string           `json:"name"`
	Slug             string           `json:"slug"`
	ShortDescription string           `json:"short_description"`
	Price            float64          `json:"price"`
	OriginalPrice    sql.NullFloat64  `json:"original_price"`
	Category         string           `json:"category"`
	Images           model.StringList `json:"images"`
	Rating           float64          `json:"rating"`
	ReviewCount      int64            `json:"review_count"`
	Stock            int64            `json:"stock"`
}

// InStock reports whether the product can be shown as available.
func (p ProductSummary) InStock() bool {
	return p.Stock > 0
}

func (q *Queries) ListActiveProducts(ctx context.Context, limit int64) ([]ProductSummary, error) {
	rows, err := q.db.QueryContext(ctx, listActiveProducts, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := []ProductSummary{}
	for rows.Next() {
		var i ProductSummary
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Slug,
			&i.ShortDescription,
			&i.Price,
			&i.OriginalPrice,
			&i.Category,
			&i.Images,
			&i.Rating,
			&i.ReviewCount,
			&i.Stock,
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

const countProducts = `SELECT COUNT(*) FROM products`

func (q *Queries) CountProducts(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countProducts)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const deleteAllProducts = `DELETE FROM products`

func (q *Queries) DeleteAllProducts(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllProducts)
	return err
}
