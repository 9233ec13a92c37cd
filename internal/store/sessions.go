// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import "context"

// sqlite3store keeps expiry as a Julian day number.
const deleteExpiredSessions = `DELETE FROM sessions WHERE expiry < julianday('now')`

// DeleteExpiredSessions removes flash sessions past their expiry. SQLite only.
func (q *Queries) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteExpiredSessions)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
