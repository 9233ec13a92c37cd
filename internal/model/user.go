// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain types shared across the application:
// user roles and statuses, content and product statuses, JSON-backed
// column types, and event log constants.
package model

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
)

// Role is the closed set of user roles.
type Role string

// User roles, highest privilege first.
const (
	RoleAdmin  Role = "ADMIN"
	RoleEditor Role = "EDITOR"
	RoleAuthor Role = "AUTHOR"
	RoleUser   Role = "USER"
)

// ErrUnknownRole is returned when a stored or decoded role is outside the closed set.
var ErrUnknownRole = errors.New("unknown role")

// ErrUnknownStatus is returned when a stored status value is not recognised.
var ErrUnknownStatus = errors.New("unknown status")

// roleLevel ranks roles for hierarchy checks.
var roleLevel = map[Role]int{
	RoleUser:   1,
	RoleAuthor: 2,
	RoleEditor: 3,
	RoleAdmin:  4,
}

// ParseRole converts s into a Role. Matching is case-insensitive.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	_, ok := roleLevel[r]
	return ok
}

// AtLeast reports whether r is ranked at or above min.
func (r Role) AtLeast(min Role) bool {
	return roleLevel[r] >= roleLevel[min] && r.Valid()
}

// IsStaff reports whether r may use the back office (admin or editor).
func (r Role) IsStaff() bool {
	return r.AtLeast(RoleEditor)
}

func (r Role) String() string { return string(r) }

// Scan implements sql.Scanner and rejects values outside the closed set.
func (r *Role) Scan(src any) error {
	s, err := scanString(src)
	if err != nil {
		return fmt.Errorf("scanning role: %w", err)
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Value implements driver.Valuer.
func (r Role) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, string(r))
	}
	return string(r), nil
}

// UserStatus is the account state.
type UserStatus string

// Account states.
const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusInactive  UserStatus = "INACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// Valid reports whether s is a known account state.
func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusActive, UserStatusInactive, UserStatusSuspended:
		return true
	}
	return false
}

// Scan implements sql.Scanner.
func (s *UserStatus) Scan(src any) error {
	v, err := scanString(src)
	if err != nil {
		return fmt.Errorf("scanning user status: %w", err)
	}
	st := UserStatus(strings.ToUpper(v))
	if !st.Valid() {
		return fmt.Errorf("%w: user status %q", ErrUnknownStatus, v)
	}
	*s = st
	return nil
}

// Value implements driver.Valuer.
func (s UserStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: user status %q", ErrUnknownStatus, string(s))
	}
	return string(s), nil
}

// scanString accepts the string and []byte forms drivers return for TEXT columns.
func scanString(src any) (string, error) {
	switch v := src.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case nil:
		return "", errors.New("unexpected NULL")
	default:
		return "", fmt.Errorf("unsupported type %T", src)
	}
}
