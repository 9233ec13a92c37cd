// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/qualitysolutions/qsite/internal/auth"
	"github.com/qualitysolutions/qsite/internal/model"
)

const userColumns = `id, email, name, password_hash, role, status, image, email_verified_at, last_login_at, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var i User
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.Name,
		&i.PasswordHash,
		&i.Role,
		&i.Status,
		&i.Image,
		&i.EmailVerifiedAt,
		&i.LastLoginAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createUser = `INSERT INTO users (
    email, name, password_hash, role, status, image, email_verified_at, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

type CreateUserParams struct {
	Email           string           `json:"email"`
	Name            string           `json:"name"`
	PasswordHash    sql.NullString   `json:"password_hash"`
	Role            model.Role       `json:"role"`
	Status          model.UserStatus `json:"status"`
	Image           sql.NullString   `json:"image"`
	EmailVerifiedAt sql.NullTime     `json:"email_verified_at"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// normalizeEmail is the form emails are stored and looked up in.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser stores the email lower-cased so that lookups, which normalise
// the same way, find it.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	arg.Email = normalizeEmail(arg.Email)
	if arg.Status == "" {
		arg.Status = model.UserStatusActive
	}
	res, err := q.db.ExecContext(ctx, createUser,
		arg.Email,
		arg.Name,
		arg.PasswordHash,
		arg.Role,
		arg.Status,
		arg.Image,
		arg.EmailVerifiedAt,
		arg.CreatedAt.UTC(),
		arg.UpdatedAt.UTC(),
	)
	if err != nil {
		return User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return User{}, err
	}
	return q.GetUserByID(ctx, id)
}

const getUserByEmail = `SELECT ` + userColumns + ` FROM users WHERE email = ?`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByEmail, normalizeEmail(email))
	return scanUser(row)
}

// FindCredentials implements auth.UserFinder.
func (q *Queries) FindCredentials(ctx context.Context, email string) (auth.UserRecord, error) {
	u, err := q.GetUserByEmail(ctx, email)
	if err != nil {
		return auth.UserRecord{}, err
	}
	return auth.UserRecord{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash.String,
		Role:         u.Role,
		Status:       u.Status,
		Image:        u.Image.String,
	}, nil
}

const getUserByID = `SELECT ` + userColumns + ` FROM users WHERE id = ?`

func (q *Queries) GetUserByID(ctx context.Context, id int64) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByID, id)
	return scanUser(row)
}

const countUsers = `SELECT COUNT(*) FROM users`

func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countUsers)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const updateUserLastLogin = `UPDATE users SET last_login_at = ?, updated_at = ? WHERE id = ?`

type UpdateUserLastLoginParams struct {
	LastLoginAt time.Time `json:"last_login_at"`
	ID          int64     `json:"id"`
}

func (q *Queries) UpdateUserLastLogin(ctx context.Context, arg UpdateUserLastLoginParams) error {
	at := arg.LastLoginAt.UTC()
	_, err := q.db.ExecContext(ctx, updateUserLastLogin, at, at, arg.ID)
	return err
}

const deleteAllUsers = `DELETE FROM users`

func (q *Queries) DeleteAllUsers(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllUsers)
	return err
}
