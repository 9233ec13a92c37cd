// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"errors"
	"testing"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Role
		wantErr bool
	}{
		{name: "admin", input: "ADMIN", want: RoleAdmin},
		{name: "editor lowercase", input: "editor", want: RoleEditor},
		{name: "author padded", input: "  Author ", want: RoleAuthor},
		{name: "user", input: "USER", want: RoleUser},
		{name: "empty", input: "", wantErr: true},
		{name: "unknown", input: "SUPERUSER", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRole(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownRole) {
					t.Errorf("ParseRole(%q) error = %v, want ErrUnknownRole", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRole(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseRole(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRoleScanRejectsUnknown(t *testing.T) {
	var r Role
	if err := r.Scan("ADMIN"); err != nil {
		t.Fatalf("Scan(ADMIN) error: %v", err)
	}
	if r != RoleAdmin {
		t.Errorf("Scan(ADMIN) = %q", r)
	}

	if err := r.Scan([]byte("guest")); !errors.Is(err, ErrUnknownRole) {
		t.Errorf("Scan(guest) error = %v, want ErrUnknownRole", err)
	}
	if err := r.Scan(nil); err == nil {
		t.Error("Scan(nil) should fail")
	}
}

func TestRoleValue(t *testing.T) {
	v, err := RoleEditor.Value()
	if err != nil {
		t.Fatalf("Value() error: %v", err)
	}
	if v != "EDITOR" {
		t.Errorf("Value() = %v, want EDITOR", v)
	}

	if _, err := Role("root").Value(); !errors.Is(err, ErrUnknownRole) {
		t.Errorf("Value() on unknown role error = %v", err)
	}
}

func TestRoleHierarchy(t *testing.T) {
	tests := []struct {
		role  Role
		min   Role
		want  bool
		staff bool
	}{
		{RoleAdmin, RoleEditor, true, true},
		{RoleEditor, RoleEditor, true, true},
		{RoleAuthor, RoleEditor, false, false},
		{RoleUser, RoleUser, true, false},
		{Role("ghost"), RoleUser, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"_"+string(tt.min), func(t *testing.T) {
			if got := tt.role.AtLeast(tt.min); got != tt.want {
				t.Errorf("AtLeast() = %v, want %v", got, tt.want)
			}
			if got := tt.role.IsStaff(); got != tt.staff {
				t.Errorf("IsStaff() = %v, want %v", got, tt.staff)
			}
		})
	}
}

func TestUserStatusScan(t *testing.T) {
	var s UserStatus
	if err := s.Scan("active"); err != nil {
		t.Fatalf("Scan(active) error: %v", err)
	}
	if s != UserStatusActive {
		t.Errorf("Scan(active) = %q", s)
	}
	if err := s.Scan("BANNED"); !errors.Is(err, ErrUnknownStatus) {
		t.Errorf("Scan(BANNED) error = %v, want ErrUnknownStatus", err)
	}
}
