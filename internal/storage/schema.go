package storage

import (
	"context"
	"database/sql"
	"fmt"
)

func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		// Single row keyed by CurrentSessionKey; user and token are written together.
		`CREATE TABLE IF NOT EXISTS session (
			key TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			username TEXT NOT NULL,
			coins INTEGER DEFAULT 0,
			is_guest INTEGER DEFAULT 0,
			is_admin INTEGER DEFAULT 0,
			token TEXT NOT NULL,
			saved_at DATETIME NOT NULL
		);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
