package remote

import (
	"context"
	"net/url"
	"strconv"

	"titleshop/internal/engine"
)

// Messages lists the latest limit messages.
func (c *Client) Messages(ctx context.Context, limit int) ([]engine.Message, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out []engine.Message
	err := c.get(ctx, "get messages", c.endpoints.Chat, "", q, &out)
	return out, err
}

func (c *Client) SendMessage(ctx context.Context, userID int64, username, body string) (engine.SendReceipt, error) {
	req := struct {
		UserID   int64  `json:"userId"`
		Username string `json:"username"`
		Message  string `json:"message"`
	}{userID, username, body}
	var out engine.SendReceipt
	err := c.post(ctx, "send message", c.endpoints.Chat, "", req, &out)
	return out, err
}
