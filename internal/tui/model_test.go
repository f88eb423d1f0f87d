package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/decred/slog"

	"titleshop/internal/engine"
)

type stubRemote struct {
	engine.Remote
	coins   int
	titles  []engine.Title
	buys    int
	actions []string
}

func (s *stubRemote) Login(ctx context.Context, username, password string) (engine.AuthResult, error) {
	return engine.AuthResult{User: engine.User{ID: 1, Username: username, Coins: s.coins}, Token: "t"}, nil
}

func (s *stubRemote) Titles(ctx context.Context, userID int64) ([]engine.Title, error) {
	return append([]engine.Title(nil), s.titles...), nil
}

func (s *stubRemote) Tasks(ctx context.Context, userID int64) ([]engine.Task, error) {
	return []engine.Task{{ID: 1, Name: "Spend 15 minutes", Progress: 5, MaxProgress: 15, Reward: 50}}, nil
}

func (s *stubRemote) Messages(ctx context.Context, limit int) ([]engine.Message, error) {
	return nil, nil
}

func (s *stubRemote) DoAction(ctx context.Context, userID int64, actionType string, value int) (engine.Progress, error) {
	s.actions = append(s.actions, actionType)
	return engine.Progress{}, nil
}

func (s *stubRemote) BuyTitle(ctx context.Context, userID, titleID int64) (engine.PurchaseReceipt, error) {
	s.buys++
	for _, t := range s.titles {
		if t.ID == titleID {
			return engine.PurchaseReceipt{Coins: s.coins - t.Price, Message: "Титул куплен!"}, nil
		}
	}
	return engine.PurchaseReceipt{}, nil
}

type nullStore struct{}

func (nullStore) Save(context.Context, engine.SavedSession) error    { return nil }
func (nullStore) Load(context.Context) (*engine.SavedSession, error) { return nil, nil }
func (nullStore) Clear(context.Context) error                        { return nil }

func newTestBoard(t *testing.T, r *stubRemote) boardModel {
	t.Helper()
	ctx := context.Background()
	eng := engine.New(r, nullStore{}, engine.Options{})
	if _, err := eng.Login(ctx, "neo", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := eng.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	m := newBoardModel(ctx, eng, slog.Disabled)
	m.loading = false
	m.sync()
	return m
}

func press(t *testing.T, m boardModel, key tea.KeyMsg) (boardModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(key)
	bm, ok := next.(boardModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return bm, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTabSwitchCyclesAndSignals(t *testing.T) {
	r := &stubRemote{coins: 10}
	m := newTestBoard(t, r)

	for _, want := range []tab{tabTasks, tabChat, tabTitles} {
		var cmd tea.Cmd
		m, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
		if m.tab != want {
			t.Fatalf("tab=%d, want %d", m.tab, want)
		}
		if cmd == nil {
			t.Fatalf("tab switch to %d issued no command", want)
		}
	}
}

func TestUnaffordableDialogRefusesConfirm(t *testing.T) {
	r := &stubRemote{coins: 100, titles: []engine.Title{{ID: 7, Name: "Legend", Price: 150}}}
	m := newTestBoard(t, r)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.state.Proposal == nil {
		t.Fatalf("enter did not open the buy dialog")
	}
	if !strings.Contains(m.View(), "Not enough coins") {
		t.Fatalf("dialog does not show the shortfall")
	}

	m, cmd := press(t, m, runes("y"))
	if cmd != nil {
		t.Fatalf("confirm issued a command for an unaffordable title")
	}
	if !strings.Contains(m.lastLog, "need 50 more") {
		t.Fatalf("lastLog=%q", m.lastLog)
	}
	if r.buys != 0 {
		t.Fatalf("buys=%d, want 0", r.buys)
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.state.Proposal != nil {
		t.Fatalf("esc did not close the dialog")
	}
}

func TestConfirmBuysAndClosesDialog(t *testing.T) {
	r := &stubRemote{coins: 100, titles: []engine.Title{{ID: 3, Name: "Novice", Price: 80}}}
	m := newTestBoard(t, r)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, cmd := press(t, m, runes("y"))
	if cmd == nil {
		t.Fatalf("confirm issued no command")
	}
	next, _ := m.Update(cmd())
	m = next.(boardModel)

	if r.buys != 1 {
		t.Fatalf("buys=%d, want 1", r.buys)
	}
	if m.state.Proposal != nil {
		t.Fatalf("dialog still open after purchase")
	}
	if m.state.Balance != 20 {
		t.Fatalf("Balance=%d, want 20", m.state.Balance)
	}
	if !strings.Contains(m.lastLog, "Титул куплен!") {
		t.Fatalf("lastLog=%q", m.lastLog)
	}
}

func TestCopyOnlyOwnedTitles(t *testing.T) {
	r := &stubRemote{coins: 10, titles: []engine.Title{
		{ID: 1, Name: "Rookie", Owned: true},
		{ID: 2, Name: "Legend", Price: 500},
	}}
	m := newTestBoard(t, r)
	var copied []string
	m.copy = func(s string) error {
		copied = append(copied, s)
		return nil
	}

	m, _ = press(t, m, runes("c"))
	m, _ = press(t, m, runes("j"))
	m, _ = press(t, m, runes("c"))

	if len(copied) != 1 || copied[0] != "Rookie" {
		t.Fatalf("copied=%v, want [Rookie]", copied)
	}
	if !strings.Contains(m.lastLog, "Only owned") {
		t.Fatalf("lastLog=%q", m.lastLog)
	}
}

func TestToastsExpire(t *testing.T) {
	m := newTestBoard(t, &stubRemote{})
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	next, cmd := m.Update(notifyMsg{n: engine.Notification{Kind: engine.NotifyTaskCompleted, Title: "Chat 10 times", Reward: 30}})
	m = next.(boardModel)
	if cmd == nil || len(m.toasts) != 1 {
		t.Fatalf("toasts=%d cmd=%v, want 1 toast with an expiry", len(m.toasts), cmd != nil)
	}
	if !strings.Contains(m.View(), "Chat 10 times") {
		t.Fatalf("toast not rendered")
	}

	now = now.Add(toastTTL + time.Second)
	next, _ = m.Update(toastExpiredMsg{})
	m = next.(boardModel)
	if len(m.toasts) != 0 {
		t.Fatalf("toasts=%d after expiry, want 0", len(m.toasts))
	}
}

func TestChatTabTypesInsteadOfQuitting(t *testing.T) {
	m := newTestBoard(t, &stubRemote{})
	m, _ = press(t, m, runes("3"))
	if m.tab != tabChat {
		t.Fatalf("tab=%d, want chat", m.tab)
	}
	m, _ = press(t, m, runes("q"))
	if got := m.input.Value(); got != "q" {
		t.Fatalf("input=%q, want q", got)
	}
}
