package engine

import (
	"context"
	"fmt"
)

// Admin calls pass the caller's id; privilege is checked by the admin service.

func (e *Engine) OnlineUsers(ctx context.Context) ([]OnlineUser, error) {
	t, err := e.begin()
	if err != nil {
		return nil, err
	}
	users, err := e.remote.OnlineUsers(ctx, t.user.ID)
	if err != nil {
		return nil, fmt.Errorf("online users: %w", err)
	}
	return users, nil
}

func (e *Engine) Stats(ctx context.Context) (Stats, error) {
	t, err := e.begin()
	if err != nil {
		return Stats{}, err
	}
	st, err := e.remote.Stats(ctx, t.user.ID)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	return st, nil
}

func (e *Engine) Transactions(ctx context.Context, targetUserID int64) ([]Transaction, error) {
	t, err := e.begin()
	if err != nil {
		return nil, err
	}
	txs, err := e.remote.Transactions(ctx, t.user.ID, targetUserID)
	if err != nil {
		return nil, fmt.Errorf("transactions: %w", err)
	}
	return txs, nil
}

// GiveCoins grants coins to a user. A grant to the caller is an authoritative
// balance and is reconciled.
func (e *Engine) GiveCoins(ctx context.Context, targetUserID int64, amount int) (Grant, error) {
	t, err := e.begin()
	if err != nil {
		return Grant{}, err
	}
	g, err := e.remote.GiveCoins(ctx, t.user.ID, targetUserID, amount)
	if err != nil {
		return Grant{}, fmt.Errorf("give coins: %w", err)
	}
	if targetUserID != t.user.ID {
		return g, nil
	}
	coins := g.NewCoins
	out, err := e.reconcile(ctx, t, newUpdate(SourceGrant, &coins, nil))
	if err != nil {
		return g, err
	}
	e.emit(out, Notification{Kind: NotifyGrant, Title: g.Username, Text: g.Message, Reward: amount})
	return g, nil
}
