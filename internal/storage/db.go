package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// DefaultDBPath returns the default session database location.
func DefaultDBPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(homeDir, ".titleshop", "session.db"), nil
}

// ResolveDBPath returns override when set, TSHOP_DB_PATH next, else the default.
func ResolveDBPath(override string) (string, error) {
	if p := strings.TrimSpace(override); p != "" {
		return p, nil
	}
	if p := strings.TrimSpace(os.Getenv("TSHOP_DB_PATH")); p != "" {
		return p, nil
	}
	return DefaultDBPath()
}

// Open opens (and creates if missing) the sqlite database at path and migrates it.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
