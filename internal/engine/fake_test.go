package engine

import (
	"context"
	"sync"
)

type gate struct {
	started chan struct{}
	release chan struct{}
}

func newGate() *gate {
	return &gate{started: make(chan struct{}, 8), release: make(chan struct{})}
}

type testRejection string

func (r testRejection) Error() string     { return "rejected: " + string(r) }
func (r testRejection) Rejection() string { return string(r) }

type fakeRemote struct {
	mu       sync.Mutex
	calls    map[string]int
	gates    map[string]*gate
	user     User
	titles   []Title
	tasks    []Task
	messages []Message
	profile  Profile

	buy     func(userID, titleID int64) (PurchaseReceipt, error)
	advance func() (Progress, error)
	action  func(actionType string) (Progress, error)
	send    func(body string) (SendReceipt, error)
	grant   func(target int64, amount int) (Grant, error)
}

func newFakeRemote(coins int) *fakeRemote {
	return &fakeRemote{
		calls: map[string]int{},
		gates: map[string]*gate{},
		user:  User{ID: 1, Username: "neo", Coins: coins},
	}
}

func (f *fakeRemote) hold(op string) *gate {
	g := newGate()
	f.mu.Lock()
	f.gates[op] = g
	f.mu.Unlock()
	return g
}

func (f *fakeRemote) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeRemote) enter(ctx context.Context, op string) error {
	f.mu.Lock()
	f.calls[op]++
	g := f.gates[op]
	f.mu.Unlock()
	if g == nil {
		return nil
	}
	g.started <- struct{}{}
	select {
	case <-g.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeRemote) authResult() AuthResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	return AuthResult{User: f.user, Token: "token-" + f.user.Username}
}

func (f *fakeRemote) Register(ctx context.Context, username, password string) (AuthResult, error) {
	if err := f.enter(ctx, "register"); err != nil {
		return AuthResult{}, err
	}
	return f.authResult(), nil
}

func (f *fakeRemote) Login(ctx context.Context, username, password string) (AuthResult, error) {
	if err := f.enter(ctx, "login"); err != nil {
		return AuthResult{}, err
	}
	if password == "wrong" {
		return AuthResult{}, testRejection("Неверный логин или пароль")
	}
	return f.authResult(), nil
}

func (f *fakeRemote) GuestLogin(ctx context.Context) (AuthResult, error) {
	if err := f.enter(ctx, "guest"); err != nil {
		return AuthResult{}, err
	}
	res := f.authResult()
	res.User.IsGuest = true
	return res, nil
}

func (f *fakeRemote) Profile(ctx context.Context, userID int64) (Profile, error) {
	if err := f.enter(ctx, "profile"); err != nil {
		return Profile{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.profile.ID == 0 {
		u := f.user
		return Profile{ID: u.ID, Username: u.Username, Coins: u.Coins, IsGuest: u.IsGuest, IsAdmin: u.IsAdmin}, nil
	}
	return f.profile, nil
}

func (f *fakeRemote) Titles(ctx context.Context, userID int64) ([]Title, error) {
	if err := f.enter(ctx, "titles"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Title(nil), f.titles...), nil
}

func (f *fakeRemote) BuyTitle(ctx context.Context, userID, titleID int64) (PurchaseReceipt, error) {
	if err := f.enter(ctx, "buy"); err != nil {
		return PurchaseReceipt{}, err
	}
	return f.buy(userID, titleID)
}

func (f *fakeRemote) Tasks(ctx context.Context, userID int64) ([]Task, error) {
	if err := f.enter(ctx, "tasks"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Task(nil), f.tasks...), nil
}

func (f *fakeRemote) UpdateTime(ctx context.Context, userID int64, minutes int) (Progress, error) {
	if err := f.enter(ctx, "time"); err != nil {
		return Progress{}, err
	}
	if f.advance == nil {
		return Progress{}, nil
	}
	return f.advance()
}

func (f *fakeRemote) DoAction(ctx context.Context, userID int64, actionType string, value int) (Progress, error) {
	if err := f.enter(ctx, "action"); err != nil {
		return Progress{}, err
	}
	if f.action == nil {
		return Progress{}, nil
	}
	return f.action(actionType)
}

func (f *fakeRemote) Messages(ctx context.Context, limit int) ([]Message, error) {
	if err := f.enter(ctx, "messages"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Message(nil), f.messages...), nil
}

func (f *fakeRemote) SendMessage(ctx context.Context, userID int64, username, body string) (SendReceipt, error) {
	if err := f.enter(ctx, "send"); err != nil {
		return SendReceipt{}, err
	}
	return f.send(body)
}

func (f *fakeRemote) OnlineUsers(ctx context.Context, adminID int64) ([]OnlineUser, error) {
	if err := f.enter(ctx, "online"); err != nil {
		return nil, err
	}
	return []OnlineUser{{ID: adminID, Username: "neo"}}, nil
}

func (f *fakeRemote) GiveCoins(ctx context.Context, adminID, targetUserID int64, amount int) (Grant, error) {
	if err := f.enter(ctx, "grant"); err != nil {
		return Grant{}, err
	}
	return f.grant(targetUserID, amount)
}

func (f *fakeRemote) Stats(ctx context.Context, adminID int64) (Stats, error) {
	if err := f.enter(ctx, "stats"); err != nil {
		return Stats{}, err
	}
	return Stats{TotalUsers: 1}, nil
}

func (f *fakeRemote) Transactions(ctx context.Context, adminID, targetUserID int64) ([]Transaction, error) {
	if err := f.enter(ctx, "transactions"); err != nil {
		return nil, err
	}
	return nil, nil
}

type memStore struct {
	mu    sync.Mutex
	saved *SavedSession
}

func (m *memStore) Save(ctx context.Context, s SavedSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = &s
	return nil
}

func (m *memStore) Load(ctx context.Context) (*SavedSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		return nil, nil
	}
	s := *m.saved
	return &s, nil
}

func (m *memStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = nil
	return nil
}

type recorder struct {
	mu      sync.Mutex
	notes   []Notification
	changes int
}

func (r *recorder) Notify(n Notification) {
	r.mu.Lock()
	r.notes = append(r.notes, n)
	r.mu.Unlock()
}

func (r *recorder) Changed() {
	r.mu.Lock()
	r.changes++
	r.mu.Unlock()
}

func (r *recorder) byKind(kind NotificationKind) []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Notification
	for _, n := range r.notes {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}
