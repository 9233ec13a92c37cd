// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const createComment = `INSERT INTO comments (article_id, author_id, content, approved, created_at)
VALUES (?, ?, ?, ?, ?)`

type CreateCommentParams struct {
	ArticleID int64     `json:"article_id"`
	AuthorID  int64     `json:"author_id"`
	Content   string    `json:"content"`
	Approved  bool      `json:"approved"`
	CreatedAt time.Time `json:"created_at"`
}

func (q *Queries) CreateComment(ctx context.Context, arg CreateCommentParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createComment,
		arg.ArticleID,
		arg.AuthorID,
		arg.Content,
		arg.Approved,
		arg.CreatedAt.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const listApprovedCommentsByArticle = `SELECT c.id, c.content, c.created_at, u.name, u.image
FROM comments c
JOIN users u ON u.id = c.author_id
WHERE c.article_id = ? AND c.approved = 1
ORDER BY c.created_at DESC, c.id DESC`

// CommentWithAuthor is the public projection of an approved comment.
type CommentWithAuthor struct {
	ID          int64          `json:"id"`
	Content     string         `json:"content"`
	CreatedAt   time.Time      `json:"created_at"`
	AuthorName  string         `json:"author_name"`
	AuthorImage sql.NullString `json:"author_image"`
}

// ListApprovedCommentsByArticle returns approved comments, newest first.
func (q *Queries) ListApprovedCommentsByArticle(ctx context.Context, articleID int64) ([]CommentWithAuthor, error) {
	rows, err := q.db.QueryContext(ctx, listApprovedCommentsByArticle, articleID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := []CommentWithAuthor{}
	for rows.Next() {
		var i CommentWithAuthor
		if err := rows.Scan(
			&i.ID,
			&i.Content,
			&i.CreatedAt,
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

const deleteAllComments = `DELETE FROM comments`

func (q *Queries) DeleteAllComments(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllComments)
	return err
}
