// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/qualitysolutions/qsite/internal/model"
)

// MinPasswordLength is the shortest password accepted, counted in characters.
const MinPasswordLength = 8

// FailureKind classifies why a credential check was rejected.
type FailureKind string

// Failure kinds.
const (
	MissingCredentials FailureKind = "missing_credentials"
	InvalidFormat      FailureKind = "invalid_format"
	UserNotFound       FailureKind = "user_not_found"
	NoPasswordSet      FailureKind = "no_password_set"
	InvalidPassword    FailureKind = "invalid_password"
	AccountDisabled    FailureKind = "account_disabled"
)

// Failure is returned by Authenticate when the credentials are rejected.
// Callers outside this package should collapse every kind into one message.
type Failure struct {
	Kind FailureKind
}

func (f *Failure) Error() string {
	return "authentication failed: " + string(f.Kind)
}

// IsFailure reports whether err is a credential rejection and returns its kind.
func IsFailure(err error) (FailureKind, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind, true
	}
	return "", false
}

// Identity is what a successful login yields.
type Identity struct {
	ID    int64
	Email string
	Name  string
	Role  model.Role
	Image string
}

// UserRecord is the subset of a stored user needed to check credentials.
// An empty PasswordHash means the account has no password set.
type UserRecord struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	Role         model.Role
	Status       model.UserStatus
	Image        string
}

// UserFinder looks up users by normalised email. It returns sql.ErrNoRows
// when no user matches.
type UserFinder interface {
	FindCredentials(ctx context.Context, email string) (UserRecord, error)
}

// Authenticator validates email/password pairs against stored users.
type Authenticator struct {
	users  UserFinder
	logger *slog.Logger
	verify func(password, encodedHash string) (bool, error)
}

// NewAuthenticator creates an authenticator backed by users.
func NewAuthenticator(users UserFinder, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{users: users, logger: logger, verify: CheckPassword}
}

// dummyHash is compared against when the account is unknown or has no
// password so that the response time does not reveal either.
var dummyHash = sync.OnceValue(func() string {
	h, err := HashArgon2("qsite-timing-equaliser")
	if err != nil {
		return ""
	}
	return h
})

// Authenticate checks the credentials and returns the matching identity.
// Rejections are *Failure values; store errors are returned wrapped.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return a.reject(MissingCredentials, email)
	}
	if !ValidEmail(email) {
		return a.reject(InvalidFormat, email)
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return a.reject(InvalidFormat, email)
	}

	email = strings.ToLower(email)
	user, err := a.users.FindCredentials(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		_, _ = a.verify(password, dummyHash())
		return a.reject(UserNotFound, email)
	}
	if err != nil {
		return Identity{}, fmt.Errorf("looking up user: %w", err)
	}

	if user.PasswordHash == "" {
		_, _ = a.verify(password, dummyHash())
		return a.reject(NoPasswordSet, email)
	}

	ok, err := a.verify(password, user.PasswordHash)
	if err != nil {
		a.logger.Warn("stored password hash could not be verified", "user_id", user.ID, "error", err)
		return a.reject(InvalidPassword, email)
	}
	if !ok {
		return a.reject(InvalidPassword, email)
	}

	if user.Status != model.UserStatusActive {
		return a.reject(AccountDisabled, email)
	}

	return Identity{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
		Image: user.Image,
	}, nil
}

func (a *Authenticator) reject(kind FailureKind, email string) (Identity, error) {
	a.logger.Debug("login rejected", "kind", string(kind), "email", email)
	return Identity{}, &Failure{Kind: kind}
}

// ValidEmail reports whether s is a bare address (no display name) with a
// dotted domain.
func ValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Name != "" || addr.Address != s {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	domain := s[at+1:]
	return strings.Contains(domain, ".") && !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}
