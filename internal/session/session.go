// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session issues the signed login token and manages the
// short-lived server session used for flash messages.
package session

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"

	"github.com/qualitysolutions/qsite/internal/store"
)

// Flash keys stored in the scs session.
const (
	FlashSuccess = "flash_success"
	FlashError   = "flash_error"
)

// New creates the flash session manager. SQLite deployments persist
// sessions in the sessions table; MySQL deployments keep them in memory.
func New(db *sql.DB, driver string, isDev bool) *scs.SessionManager {
	sm := scs.New()

	if driver == store.DriverMySQL {
		sm.Store = memstore.New()
	} else {
		sm.Store = sqlite3store.New(db)
	}

	sm.Lifetime = 24 * time.Hour
	sm.Cookie.Name = "qs_flash"
	sm.Cookie.Path = "/"
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev
	if !isDev {
		sm.Cookie.Name = "__Host-qs_flash"
	}

	return sm
}
