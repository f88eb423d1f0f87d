package storage

import "time"

type Session struct {
	UserID   int64
	Username string
	Coins    int
	IsGuest  bool
	IsAdmin  bool
	Token    string
	SavedAt  time.Time
}
