package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const CurrentSessionKey = "current"

type SessionRepo struct {
	db *sql.DB
}

func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Get returns the saved session, or nil if none is stored.
func (r *SessionRepo) Get(ctx context.Context) (*Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT user_id, username, coins, is_guest, is_admin, token, saved_at
		FROM session
		WHERE key = ?
	`, CurrentSessionKey)

	var (
		s       Session
		isGuest int
		isAdmin int
	)
	if err := row.Scan(&s.UserID, &s.Username, &s.Coins, &isGuest, &isAdmin, &s.Token, &s.SavedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("session get: %w", err)
	}
	s.IsGuest = isGuest != 0
	s.IsAdmin = isAdmin != 0
	return &s, nil
}

// Save replaces the stored session.
func (r *SessionRepo) Save(ctx context.Context, s Session) error {
	if s.SavedAt.IsZero() {
		s.SavedAt = time.Now().UTC()
	}
	return WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM session WHERE key = ?`, CurrentSessionKey); err != nil {
			return fmt.Errorf("session clear: %w", err)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO session (key, user_id, username, coins, is_guest, is_admin, token, saved_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, CurrentSessionKey, s.UserID, s.Username, s.Coins, boolToInt(s.IsGuest), boolToInt(s.IsAdmin), s.Token, s.SavedAt)
		if err != nil {
			return fmt.Errorf("session insert: %w", err)
		}
		return nil
	})
}

// Clear removes the stored user and token.
func (r *SessionRepo) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM session WHERE key = ?`, CurrentSessionKey); err != nil {
		return fmt.Errorf("session clear: %w", err)
	}
	return nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
