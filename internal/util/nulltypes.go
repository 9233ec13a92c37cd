// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"database/sql"
	"time"
)

// NullStringFromValue returns a NullString that is valid only when s is non-empty.
func NullStringFromValue(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// NullTimeFromValue returns a NullTime that is valid unless t is the zero time.
func NullTimeFromValue(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

// NullFloat64FromValue always returns a valid NullFloat64.
func NullFloat64FromValue(f float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: f, Valid: true}
}
