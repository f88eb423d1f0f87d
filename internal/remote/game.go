package remote

import (
	"context"

	"titleshop/internal/engine"
)

type authRequest struct {
	Action   string `json:"action"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

func (c *Client) auth(ctx context.Context, op string, req authRequest) (engine.AuthResult, error) {
	var out engine.AuthResult
	if err := c.post(ctx, op, c.endpoints.Auth, "", req, &out); err != nil {
		return engine.AuthResult{}, err
	}
	return out, nil
}

func (c *Client) Register(ctx context.Context, username, password string) (engine.AuthResult, error) {
	return c.auth(ctx, "register", authRequest{Action: "register", Username: username, Password: password})
}

func (c *Client) Login(ctx context.Context, username, password string) (engine.AuthResult, error) {
	return c.auth(ctx, "login", authRequest{Action: "login", Username: username, Password: password})
}

func (c *Client) GuestLogin(ctx context.Context) (engine.AuthResult, error) {
	return c.auth(ctx, "guest login", authRequest{Action: "guest"})
}

func (c *Client) Profile(ctx context.Context, userID int64) (engine.Profile, error) {
	var out engine.Profile
	err := c.get(ctx, "profile", c.endpoints.Game, "profile", idQuery("userId", userID), &out)
	return out, err
}

func (c *Client) Titles(ctx context.Context, userID int64) ([]engine.Title, error) {
	var out []engine.Title
	err := c.get(ctx, "titles", c.endpoints.Game, "titles", idQuery("userId", userID), &out)
	return out, err
}

func (c *Client) BuyTitle(ctx context.Context, userID, titleID int64) (engine.PurchaseReceipt, error) {
	body := struct {
		UserID  int64 `json:"userId"`
		TitleID int64 `json:"titleId"`
	}{userID, titleID}
	var out engine.PurchaseReceipt
	err := c.post(ctx, "buy title", c.endpoints.Game, "buy-title", body, &out)
	return out, err
}

func (c *Client) Tasks(ctx context.Context, userID int64) ([]engine.Task, error) {
	var out []engine.Task
	err := c.get(ctx, "tasks", c.endpoints.Game, "tasks", idQuery("userId", userID), &out)
	return out, err
}

func (c *Client) UpdateTime(ctx context.Context, userID int64, minutes int) (engine.Progress, error) {
	body := struct {
		UserID  int64 `json:"userId"`
		Minutes int   `json:"minutes"`
	}{userID, minutes}
	var out engine.Progress
	err := c.post(ctx, "update time", c.endpoints.Game, "update-time", body, &out)
	return out, err
}

func (c *Client) DoAction(ctx context.Context, userID int64, actionType string, value int) (engine.Progress, error) {
	body := struct {
		UserID     int64  `json:"userId"`
		ActionType string `json:"actionType"`
		Value      int    `json:"value"`
	}{userID, actionType, value}
	var out engine.Progress
	err := c.post(ctx, "action", c.endpoints.Game, "action", body, &out)
	return out, err
}
