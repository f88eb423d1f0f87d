package engine

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"titleshop/internal/storage"
)

// Session is the local view of an authenticated user. The balance is only
// written by the Reconciler.
type Session struct {
	ID       string
	User     User
	Token    string
	Started  time.Time
	balance  int
	hasCoins bool
}

func newSession(user User, token string) *Session {
	return &Session{
		ID:      uuid.NewString(),
		User:    user,
		Token:   token,
		Started: time.Now().UTC(),
	}
}

func (s *Session) Balance() int { return s.balance }

// SavedSession is what survives a restart.
type SavedSession struct {
	User  User
	Token string
}

// SessionStore persists the current user and token together.
type SessionStore interface {
	Save(ctx context.Context, s SavedSession) error
	Load(ctx context.Context) (*SavedSession, error)
	Clear(ctx context.Context) error
}

type repoStore struct {
	repo *storage.SessionRepo
}

// StoreFromDB returns a SessionStore backed by the sqlite session table.
func StoreFromDB(db *sql.DB) SessionStore {
	return &repoStore{repo: storage.NewSessionRepo(db)}
}

func (r *repoStore) Save(ctx context.Context, s SavedSession) error {
	return r.repo.Save(ctx, storage.Session{
		UserID:   s.User.ID,
		Username: s.User.Username,
		Coins:    s.User.Coins,
		IsGuest:  s.User.IsGuest,
		IsAdmin:  s.User.IsAdmin,
		Token:    s.Token,
	})
}

func (r *repoStore) Load(ctx context.Context) (*SavedSession, error) {
	row, err := r.repo.Get(ctx)
	if err != nil || row == nil {
		return nil, err
	}
	return &SavedSession{
		User: User{
			ID:       row.UserID,
			Username: row.Username,
			Coins:    row.Coins,
			IsGuest:  row.IsGuest,
			IsAdmin:  row.IsAdmin,
		},
		Token: row.Token,
	}, nil
}

func (r *repoStore) Clear(ctx context.Context) error {
	return r.repo.Clear(ctx)
}
