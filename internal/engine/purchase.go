package engine

import (
	"context"
	"fmt"
)

// Proposal is the view of a pending purchase. CanAfford and BalanceAfter are
// previews computed from the local balance; neither is ever written back.
type Proposal struct {
	TitleID      int64
	Name         string
	Price        int
	Balance      int
	BalanceAfter int
	CanAfford    bool
	Confirming   bool
	LastError    string
}

type PurchaseResult struct {
	TitleID int64
	Name    string
	Coins   int
	Message string
}

type titleSnapshot struct {
	id    int64
	name  string
	price int
}

type purchaseFlow struct {
	snap    *titleSnapshot
	busy    bool
	lastErr string
}

func (f *purchaseFlow) propose(t Title) {
	f.snap = &titleSnapshot{id: t.ID, name: t.Name, price: t.Price}
	f.lastErr = ""
}

func (f *purchaseFlow) view(balance int) *Proposal {
	if f.snap == nil {
		return nil
	}
	return &Proposal{
		TitleID:      f.snap.id,
		Name:         f.snap.name,
		Price:        f.snap.price,
		Balance:      balance,
		BalanceAfter: balance - f.snap.price,
		CanAfford:    balance >= f.snap.price,
		Confirming:   f.busy,
		LastError:    f.lastErr,
	}
}

func (f *purchaseFlow) reset() {
	f.snap = nil
	f.busy = false
	f.lastErr = ""
}

// Propose snapshots a title from the last titles fetch and opens the
// confirmation step.
func (e *Engine) Propose(titleID int64) (Proposal, error) {
	e.mu.Lock()
	if e.session == nil {
		e.mu.Unlock()
		return Proposal{}, ErrNoSession
	}
	if e.purchase.busy {
		e.mu.Unlock()
		return Proposal{}, ErrBusy
	}
	var found *Title
	for i := range e.titles {
		if e.titles[i].ID == titleID {
			found = &e.titles[i]
			break
		}
	}
	if found == nil {
		e.mu.Unlock()
		return Proposal{}, ErrTitleNotFound
	}
	if found.Owned {
		e.mu.Unlock()
		return Proposal{}, ErrAlreadyOwned
	}
	e.purchase.propose(*found)
	p := *e.purchase.view(e.session.balance)
	e.mu.Unlock()

	e.changed()
	return p, nil
}

// CancelPurchase closes the confirmation step. A confirm already in flight
// still reconciles its balance when it returns.
func (e *Engine) CancelPurchase() {
	e.mu.Lock()
	e.purchase.snap = nil
	e.purchase.lastErr = ""
	e.mu.Unlock()
	e.changed()
}

// Confirm issues the purchase for the snapshotted title. The local
// affordability preview can refuse without a call; only the game service can
// accept. While a confirm is in flight further confirms return ErrBusy.
func (e *Engine) Confirm(ctx context.Context) (PurchaseResult, error) {
	e.mu.Lock()
	if e.session == nil {
		e.mu.Unlock()
		return PurchaseResult{}, ErrNoSession
	}
	if e.purchase.snap == nil {
		e.mu.Unlock()
		return PurchaseResult{}, ErrNoProposal
	}
	if e.purchase.busy {
		e.mu.Unlock()
		return PurchaseResult{}, ErrBusy
	}
	snap := *e.purchase.snap
	if bal := e.session.balance; bal < snap.price {
		e.mu.Unlock()
		return PurchaseResult{}, AffordabilityError{Price: snap.price, Balance: bal}
	}
	e.purchase.busy = true
	e.purchase.lastErr = ""
	t := e.ticketLocked()
	e.mu.Unlock()
	e.changed()

	rec, err := e.remote.BuyTitle(ctx, t.user.ID, snap.id)

	e.mu.Lock()
	if !e.liveLocked(t) {
		e.mu.Unlock()
		e.log.Debugf("purchase of title %d resolved after session end; discarded", snap.id)
		return PurchaseResult{}, ErrStale
	}
	e.purchase.busy = false
	if err != nil {
		if msg, ok := RejectionMessage(err); ok {
			e.purchase.lastErr = msg
		} else {
			e.purchase.lastErr = "could not reach the game service"
		}
		e.mu.Unlock()
		e.changed()
		return PurchaseResult{}, fmt.Errorf("buy title %d: %w", snap.id, err)
	}
	coins := rec.Coins
	out := e.recon.Apply(e.session, newUpdate(SourcePurchase, &coins, rec.CompletedTasks))
	if out.BalanceChanged {
		e.persistLocked(ctx)
	}
	if e.purchase.snap != nil && e.purchase.snap.id == snap.id {
		e.purchase.reset()
	}
	e.mu.Unlock()

	e.log.Infof("bought %q, balance %d", snap.name, coins)
	e.emit(out, Notification{Kind: NotifyPurchased, Title: snap.name, Text: rec.Message})
	e.refetch(ctx, true, true)

	return PurchaseResult{TitleID: snap.id, Name: snap.name, Coins: coins, Message: rec.Message}, nil
}
