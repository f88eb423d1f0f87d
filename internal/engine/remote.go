package engine

import "context"

// Remote is the narrow surface of the external auth, game, chat and admin
// services. Implementations are stateless; every method is one call.
type Remote interface {
	Register(ctx context.Context, username, password string) (AuthResult, error)
	Login(ctx context.Context, username, password string) (AuthResult, error)
	GuestLogin(ctx context.Context) (AuthResult, error)

	Profile(ctx context.Context, userID int64) (Profile, error)
	Titles(ctx context.Context, userID int64) ([]Title, error)
	BuyTitle(ctx context.Context, userID, titleID int64) (PurchaseReceipt, error)
	Tasks(ctx context.Context, userID int64) ([]Task, error)
	UpdateTime(ctx context.Context, userID int64, minutes int) (Progress, error)
	DoAction(ctx context.Context, userID int64, actionType string, value int) (Progress, error)

	Messages(ctx context.Context, limit int) ([]Message, error)
	SendMessage(ctx context.Context, userID int64, username, body string) (SendReceipt, error)

	OnlineUsers(ctx context.Context, adminID int64) ([]OnlineUser, error)
	GiveCoins(ctx context.Context, adminID, targetUserID int64, amount int) (Grant, error)
	Stats(ctx context.Context, adminID int64) (Stats, error)
	Transactions(ctx context.Context, adminID, targetUserID int64) ([]Transaction, error)
}
