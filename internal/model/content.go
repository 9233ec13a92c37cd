// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// ArticleStatus is the editorial state of an article.
type ArticleStatus string

// Article states.
const (
	ArticleStatusDraft     ArticleStatus = "DRAFT"
	ArticleStatusPublished ArticleStatus = "PUBLISHED"
	ArticleStatusArchived  ArticleStatus = "ARCHIVED"
)

// Scan implements sql.Scanner.
func (s *ArticleStatus) Scan(src any) error {
	v, err := scanString(src)
	if err != nil {
		return fmt.Errorf("scanning article status: %w", err)
	}
	switch st := ArticleStatus(strings.ToUpper(v)); st {
	case ArticleStatusDraft, ArticleStatusPublished, ArticleStatusArchived:
		*s = st
		return nil
	}
	return fmt.Errorf("%w: article status %q", ErrUnknownStatus, v)
}

// ProductStatus is the catalogue state of a product.
type ProductStatus string

// Product states.
const (
	ProductStatusActive   ProductStatus = "ACTIVE"
	ProductStatusInactive ProductStatus = "INACTIVE"
)

// Scan implements sql.Scanner.
func (s *ProductStatus) Scan(src any) error {
	v, err := scanString(src)
	if err != nil {
		return fmt.Errorf("scanning product status: %w", err)
	}
	switch st := ProductStatus(strings.ToUpper(v)); st {
	case ProductStatusActive, ProductStatusInactive:
		*s = st
		return nil
	}
	return fmt.Errorf("%w: product status %q", ErrUnknownStatus, v)
}

// StringList is an ordered list of strings stored as a JSON array.
// Used for article tags, product images and product features.
type StringList []string

// Scan implements sql.Scanner. NULL and empty text decode to an empty list.
func (l *StringList) Scan(src any) error {
	return scanJSON(src, l)
}

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// First returns the first element or an empty string.
func (l StringList) First() string {
	if len(l) == 0 {
		return ""
	}
	return l[0]
}

// StringMap is a free-form string to string mapping stored as a JSON object.
type StringMap map[string]string

// Scan implements sql.Scanner.
func (m *StringMap) Scan(src any) error {
	return scanJSON(src, m)
}

// Value implements driver.Valuer.
func (m StringMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]string(m))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Dimensions holds a product's physical size in centimetres.
type Dimensions struct {
	Length int `json:"length"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// NullDimensions is a nullable Dimensions column.
type NullDimensions struct {
	Dimensions Dimensions
	Valid      bool
}

// Scan implements sql.Scanner.
func (n *NullDimensions) Scan(src any) error {
	if src == nil {
		n.Dimensions, n.Valid = Dimensions{}, false
		return nil
	}
	if err := scanJSON(src, &n.Dimensions); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// Value implements driver.Valuer.
func (n NullDimensions) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	b, err := json.Marshal(n.Dimensions)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func scanJSON(src any, dst any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("unsupported JSON column type %T", src)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decoding JSON column: %w", err)
	}
	return nil
}
