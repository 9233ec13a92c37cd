// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"time"

	"github.com/qualitysolutions/qsite/internal/model"
)

type User struct {
	ID              int64            `json:"id"`
	Email           string           `json:"email"`
	Name            string           `json:"name"`
	PasswordHash    sql.NullString   `json:"-"`
	Role            model.Role       `json:"role"`
	Status          model.UserStatus `json:"status"`
	Image           sql.NullString   `json:"image"`
	EmailVerifiedAt sql.NullTime     `json:"email_verified_at"`
	LastLoginAt     sql.NullTime     `json:"last_login_at"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

type Article struct {
	ID             int64               `json:"id"`
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

type Comment struct {
	ID        int64     `json:"id"`
	ArticleID int64     `json:"article_id"`
	AuthorID  int64     `json:"author_id"`
	Content   string    `json:"content"`
	Approved  bool      `json:"approved"`
	CreatedAt time.Time `json:"created_at"`
}

type Product struct {
	ID               int64                `json:"id"`
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

// InStock reports whether the product can be shown as available.
func (p Product) InStock() bool {
	return p.Stock > 0
}

type LoginAttempt struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	IpAddress string    `json:"ip_address"`
	Success   bool      `json:"success"`
	CreatedAt time.Time `json:"created_at"`
}

type Event struct {
	ID        int64         `json:"id"`
	Level     string        `json:"level"`
	Category  string        `json:"category"`
	Message   string        `json:"message"`
	UserID    sql.NullInt64 `json:"user_id"`
	Metadata  string        `json:"metadata"`
	IpAddress string        `json:"ip_address"`
	CreatedAt time.Time     `json:"created_at"`
}
