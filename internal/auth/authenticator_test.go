// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/qualitysolutions/qsite/internal/model"
)

// fakeFinder serves users from a map and counts lookups.
type fakeFinder struct {
	users   map[string]UserRecord
	err     error
	lookups int
	lastKey string
}

func (f *fakeFinder) FindCredentials(_ context.Context, email string) (UserRecord, error) {
	f.lookups++
	f.lastKey = email
	if f.err != nil {
		return UserRecord{}, f.err
	}
	u, ok := f.users[email]
	if !ok {
		return UserRecord{}, sql.ErrNoRows
	}
	return u, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	h, err := HashPassword(password)
	require.NoError(t, err)
	return h
}

func newFinder(t *testing.T) *fakeFinder {
	t.Helper()
	return &fakeFinder{users: map[string]UserRecord{
		"admin@qualitysolutions.com": {
			ID: 1, Email: "admin@qualitysolutions.com", Name: "أحمد الخليفي",
			PasswordHash: mustHash(t, "Admin@2024"),
			Role:         model.RoleAdmin, Status: model.UserStatusActive,
			Image: "https://api.dicebear.com/7.x/avataaars/svg?seed=admin",
		},
		"sso@qualitysolutions.com": {
			ID: 2, Email: "sso@qualitysolutions.com", Name: "SSO",
			Role: model.RoleUser, Status: model.UserStatusActive,
		},
		"suspended@qualitysolutions.com": {
			ID: 3, Email: "suspended@qualitysolutions.com", Name: "Suspended",
			PasswordHash: mustHash(t, "Suspended@2024"),
			Role:         model.RoleAuthor, Status: model.UserStatusSuspended,
		},
	}}
}

func TestAuthenticate_Success(t *testing.T) {
	finder := newFinder(t)
	a := NewAuthenticator(finder, quietLogger())

	id, err := a.Authenticate(context.Background(), "admin@qualitysolutions.com", "Admin@2024")
	require.NoError(t, err)

	assert.Equal(t, int64(1), id.ID)
	assert.Equal(t, model.RoleAdmin, id.Role)
	assert.Equal(t, "أحمد الخليفي", id.Name)
	assert.Equal(t, "https://api.dicebear.com/7.x/avataaars/svg?seed=admin", id.Image)
}

func TestAuthenticate_NormalisesEmail(t *testing.T) {
	finder := newFinder(t)
	a := NewAuthenticator(finder, quietLogger())

	_, err := a.Authenticate(context.Background(), "  Admin@QualitySolutions.com ", "Admin@2024")
	require.NoError(t, err)
	assert.Equal(t, "admin@qualitysolutions.com", finder.lastKey)
}

func TestAuthenticate_Failures(t *testing.T) {
	tests := []struct {
		name       string
		email      string
		password   string
		want       FailureKind
		wantLookup bool
	}{
		{"empty email", "", "Admin@2024", MissingCredentials, false},
		{"blank email", "   ", "Admin@2024", MissingCredentials, false},
		{"empty password", "admin@qualitysolutions.com", "", MissingCredentials, false},
		{"not an address", "admin", "Admin@2024", InvalidFormat, false},
		{"display name", "Admin <admin@qualitysolutions.com>", "Admin@2024", InvalidFormat, false},
		{"no dotted domain", "admin@localhost", "Admin@2024", InvalidFormat, false},
		{"short password", "admin@qualitysolutions.com", "Admin@2", InvalidFormat, false},
		{"short multibyte password", "admin@qualitysolutions.com", "كلمةسر1", InvalidFormat, false},
		{"unknown email", "nouser@x.com", "whatever-long", UserNotFound, true},
		{"no password set", "sso@qualitysolutions.com", "Admin@2024", NoPasswordSet, true},
		{"wrong password", "admin@qualitysolutions.com", "Admin@2025", InvalidPassword, true},
		{"one char off", "admin@qualitysolutions.com", "admin@2024", InvalidPassword, true},
		{"disabled account", "suspended@qualitysolutions.com", "Suspended@2024", AccountDisabled, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			finder := newFinder(t)
			a := NewAuthenticator(finder, quietLogger())

			id, err := a.Authenticate(context.Background(), tt.email, tt.password)
			require.Error(t, err)
			assert.Zero(t, id)

			kind, ok := IsFailure(err)
			require.True(t, ok, "expected *Failure, got %T", err)
			assert.Equal(t, tt.want, kind)
			assert.Equal(t, tt.wantLookup, finder.lookups > 0, "lookups = %d", finder.lookups)
		})
	}
}

func TestAuthenticate_UnknownAccountsStillHash(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  FailureKind
	}{
		{"unknown email", "nouser@qualitysolutions.com", UserNotFound},
		{"no password set", "sso@qualitysolutions.com", NoPasswordSet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAuthenticator(newFinder(t), quietLogger())
			var hashes []string
			a.verify = func(password, encodedHash string) (bool, error) {
				hashes = append(hashes, encodedHash)
				return CheckPassword(password, encodedHash)
			}

			_, err := a.Authenticate(context.Background(), tt.email, "Admin@2024")
			kind, ok := IsFailure(err)
			require.True(t, ok)
			assert.Equal(t, tt.want, kind)
			require.Len(t, hashes, 1)
			assert.Equal(t, dummyHash(), hashes[0])
			assert.NotEmpty(t, hashes[0])
		})
	}
}

func TestAuthenticate_SuspendedWrongPasswordIsInvalidPassword(t *testing.T) {
	a := NewAuthenticator(newFinder(t), quietLogger())

	_, err := a.Authenticate(context.Background(), "suspended@qualitysolutions.com", "Wrong@20244")
	kind, ok := IsFailure(err)
	require.True(t, ok)
	assert.Equal(t, InvalidPassword, kind)
}

func TestAuthenticate_Bcrypt(t *testing.T) {
	raw, err := bcrypt.GenerateFromPassword([]byte("Imported@2024"), bcrypt.MinCost)
	require.NoError(t, err)

	finder := &fakeFinder{users: map[string]UserRecord{
		"imported@qualitysolutions.com": {
			ID: 9, Email: "imported@qualitysolutions.com", Name: "Imported",
			PasswordHash: string(raw), Role: model.RoleEditor, Status: model.UserStatusActive,
		},
	}}
	a := NewAuthenticator(finder, quietLogger())

	id, err := a.Authenticate(context.Background(), "imported@qualitysolutions.com", "Imported@2024")
	require.NoError(t, err)
	assert.Equal(t, model.RoleEditor, id.Role)
}

func TestAuthenticate_CorruptHashIsInvalidPassword(t *testing.T) {
	finder := &fakeFinder{users: map[string]UserRecord{
		"odd@qualitysolutions.com": {
			ID: 4, Email: "odd@qualitysolutions.com", PasswordHash: "md5:0123",
			Role: model.RoleUser, Status: model.UserStatusActive,
		},
	}}
	a := NewAuthenticator(finder, quietLogger())

	_, err := a.Authenticate(context.Background(), "odd@qualitysolutions.com", "whatever-long")
	kind, ok := IsFailure(err)
	require.True(t, ok)
	assert.Equal(t, InvalidPassword, kind)
}

func TestAuthenticate_StoreErrorPropagates(t *testing.T) {
	storeErr := errors.New("database is locked")
	finder := &fakeFinder{err: storeErr}
	a := NewAuthenticator(finder, quietLogger())

	_, err := a.Authenticate(context.Background(), "admin@qualitysolutions.com", "Admin@2024")
	require.Error(t, err)
	assert.ErrorIs(t, err, storeErr)

	_, isFailure := IsFailure(err)
	assert.False(t, isFailure, "store errors must not be reported as credential failures")
}

func TestFailureError(t *testing.T) {
	err := error(&Failure{Kind: UserNotFound})
	assert.Equal(t, "authentication failed: user_not_found", err.Error())

	wrapped := errors.Join(errors.New("login"), err)
	kind, ok := IsFailure(wrapped)
	assert.True(t, ok)
	assert.Equal(t, UserNotFound, kind)

	_, ok = IsFailure(errors.New("other"))
	assert.False(t, ok)
}

func TestValidEmail(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"admin@qualitysolutions.com", true},
		{"first.last+tag@sub.example.org", true},
		{"nouser@x.com", true},
		{"admin", false},
		{"admin@", false},
		{"@example.com", false},
		{"admin@localhost", false},
		{"admin@example.", false},
		{"admin@.example.com", false},
		{"Admin <admin@example.com>", false},
		{"admin@example.com ", false},
		{"a b@example.com", false},
	}
	for _, tt := range tests {
		if got := ValidEmail(tt.in); got != tt.want {
			t.Errorf("ValidEmail(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
