package engine

import "github.com/google/uuid"

// Source names the call that produced an Update.
type Source string

const (
	SourceLogin    Source = "login"
	SourceProfile  Source = "profile"
	SourcePresence Source = "presence"
	SourcePurchase Source = "purchase"
	SourceChat     Source = "chat"
	SourceAction   Source = "action"
	SourceGrant    Source = "grant"
)

// Update is one authoritative response, reduced to the fields that move money
// or progression. ID identifies the response instance.
type Update struct {
	ID        string
	Source    Source
	Coins     *int
	Completed []CompletedTask
}

func newUpdate(src Source, coins *int, completed []CompletedTask) Update {
	return Update{ID: uuid.NewString(), Source: src, Coins: coins, Completed: completed}
}

type NotificationKind string

const (
	NotifyTaskCompleted NotificationKind = "task_completed"
	NotifyPurchased     NotificationKind = "purchased"
	NotifyGrant         NotificationKind = "grant"
)

type Notification struct {
	Kind   NotificationKind
	Title  string
	Text   string
	Reward int
}

// Outcome is what applying an Update changed.
type Outcome struct {
	Duplicate      bool
	BalanceChanged bool
	Balance        int
	Notifications  []Notification
}

const seenUpdatesLimit = 256

// Reconciler is the single path through which authoritative balances and task
// completions reach a Session. It is not safe for concurrent use; the Engine
// serializes calls under its lock.
type Reconciler struct {
	seen  map[string]struct{}
	order []string
}

func NewReconciler() *Reconciler {
	return &Reconciler{seen: map[string]struct{}{}}
}

// Apply overwrites the balance if the update carries one and emits one
// notification per completed task. An update already applied is ignored
// entirely.
func (r *Reconciler) Apply(s *Session, u Update) Outcome {
	if u.ID != "" {
		if _, ok := r.seen[u.ID]; ok {
			return Outcome{Duplicate: true, Balance: s.balance}
		}
		r.remember(u.ID)
	}

	out := Outcome{Balance: s.balance}
	if u.Coins != nil {
		out.BalanceChanged = !s.hasCoins || s.balance != *u.Coins
		s.balance = *u.Coins
		s.hasCoins = true
		out.Balance = s.balance
	}
	for _, ct := range u.Completed {
		out.Notifications = append(out.Notifications, Notification{
			Kind:   NotifyTaskCompleted,
			Title:  ct.Name,
			Text:   "Task completed: " + ct.Name,
			Reward: ct.Reward,
		})
	}
	return out
}

// Reset forgets every applied update.
func (r *Reconciler) Reset() {
	r.seen = map[string]struct{}{}
	r.order = nil
}

func (r *Reconciler) remember(id string) {
	r.seen[id] = struct{}{}
	r.order = append(r.order, id)
	if len(r.order) > seenUpdatesLimit {
		drop := r.order[0]
		r.order = r.order[1:]
		delete(r.seen, drop)
	}
}
