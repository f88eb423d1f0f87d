package remote

import (
	"context"
	"strconv"

	"titleshop/internal/engine"
)

func (c *Client) OnlineUsers(ctx context.Context, adminID int64) ([]engine.OnlineUser, error) {
	var out []engine.OnlineUser
	err := c.get(ctx, "online users", c.endpoints.Admin, "online", idQuery("adminId", adminID), &out)
	return out, err
}

func (c *Client) GiveCoins(ctx context.Context, adminID, targetUserID int64, amount int) (engine.Grant, error) {
	body := struct {
		AdminID      int64 `json:"adminId"`
		TargetUserID int64 `json:"targetUserId"`
		Amount       int   `json:"amount"`
	}{adminID, targetUserID, amount}
	var out engine.Grant
	err := c.post(ctx, "give coins", c.endpoints.Admin, "give-coins", body, &out)
	return out, err
}

func (c *Client) Stats(ctx context.Context, adminID int64) (engine.Stats, error) {
	var out engine.Stats
	err := c.get(ctx, "stats", c.endpoints.Admin, "stats", idQuery("adminId", adminID), &out)
	return out, err
}

func (c *Client) Transactions(ctx context.Context, adminID, targetUserID int64) ([]engine.Transaction, error) {
	var out []engine.Transaction
	q := idQuery("adminId", adminID)
	q.Set("targetUserId", strconv.FormatInt(targetUserID, 10))
	err := c.get(ctx, "transactions", c.endpoints.Admin, "transactions", q, &out)
	return out, err
}
