// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const createLoginAttempt = `INSERT INTO login_attempts (email, ip_address, success, created_at) VALUES (?, ?, ?, ?)`

type CreateLoginAttemptParams struct {
	Email     string    `json:"email"`
	IpAddress string    `json:"ip_address"`
	Success   bool      `json:"success"`
	CreatedAt time.Time `json:"created_at"`
}

func (q *Queries) CreateLoginAttempt(ctx context.Context, arg CreateLoginAttemptParams) error {
	_, err := q.db.ExecContext(ctx, createLoginAttempt,
		arg.Email,
		arg.IpAddress,
		arg.Success,
		arg.CreatedAt.UTC(),
	)
	return err
}

const listRecentLoginAttempts = `SELECT id, email, ip_address, success, created_at
FROM login_attempts
WHERE email = ?
ORDER BY id DESC
LIMIT ?`

// ListRecentLoginAttempts returns the latest attempts for email, newest first.
func (q *Queries) ListRecentLoginAttempts(ctx context.Context, email string, limit int64) ([]LoginAttempt, error) {
	rows, err := q.db.QueryContext(ctx, listRecentLoginAttempts, email, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := []LoginAttempt{}
	for rows.Next() {
		var i LoginAttempt
		if err := rows.Scan(
			&i.ID,
			&i.Email,
			&i.IpAddress,
			&i.Success,
			&i.CreatedAt,
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

const deleteLoginAttemptsBefore = `DELETE FROM login_attempts WHERE created_at < ?`

// DeleteLoginAttemptsBefore prunes attempts older than cutoff and reports how many went.
func (q *Queries) DeleteLoginAttemptsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteLoginAttemptsBefore, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteAllLoginAttempts = `DELETE FROM login_attempts`

func (q *Queries) DeleteAllLoginAttempts(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllLoginAttempts)
	return err
}
