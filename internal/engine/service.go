package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/decred/slog"
	"golang.org/x/sync/errgroup"
)

// Observer receives engine events. Implementations must not block.
type Observer interface {
	Notify(n Notification)
	Changed()
}

type nopObserver struct{}

func (nopObserver) Notify(Notification) {}
func (nopObserver) Changed()            {}

type Options struct {
	PresenceInterval time.Duration
	ChatInterval     time.Duration
	PresenceMinutes  int
	ChatHistoryLimit int
	Logger           slog.Logger
	SchedulerLogger  slog.Logger
}

const DefaultChatHistoryLimit = 50

// Engine keeps the local session, titles, tasks and chat log consistent with
// the remote services. Every balance write goes through its Reconciler.
type Engine struct {
	remote Remote
	store  SessionStore
	opts   Options
	log    slog.Logger
	sched  *Scheduler

	obsMu    sync.RWMutex
	observer Observer

	mu       sync.Mutex
	gen      uint64
	session  *Session
	titles   []Title
	tasks    []Task
	chat     *ChatLog
	recon    *Reconciler
	purchase purchaseFlow
	sending  bool
}

func New(remote Remote, store SessionStore, opts Options) *Engine {
	if opts.PresenceMinutes <= 0 {
		opts.PresenceMinutes = DefaultPresenceMinutes
	}
	if opts.ChatHistoryLimit <= 0 {
		opts.ChatHistoryLimit = DefaultChatHistoryLimit
	}
	if opts.Logger == nil {
		opts.Logger = slog.Disabled
	}
	if opts.SchedulerLogger == nil {
		opts.SchedulerLogger = opts.Logger
	}
	return &Engine{
		remote:   remote,
		store:    store,
		opts:     opts,
		log:      opts.Logger,
		sched:    NewScheduler(opts.PresenceInterval, opts.ChatInterval, opts.SchedulerLogger),
		observer: nopObserver{},
		chat:     NewChatLog(),
		recon:    NewReconciler(),
	}
}

func (e *Engine) SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	e.obsMu.Lock()
	e.observer = o
	e.obsMu.Unlock()
}

func (e *Engine) obs() Observer {
	e.obsMu.RLock()
	defer e.obsMu.RUnlock()
	return e.observer
}

func (e *Engine) changed() { e.obs().Changed() }

// ticket pins a call to the session it was issued for.
type ticket struct {
	gen  uint64
	user User
}

func (e *Engine) ticketLocked() ticket {
	return ticket{gen: e.gen, user: e.session.User}
}

func (e *Engine) liveLocked(t ticket) bool {
	return e.session != nil && e.gen == t.gen
}

func (e *Engine) begin() (ticket, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return ticket{}, ErrNoSession
	}
	return e.ticketLocked(), nil
}

func (e *Engine) Login(ctx context.Context, username, password string) (User, error) {
	res, err := e.remote.Login(ctx, username, password)
	if err != nil {
		return User{}, fmt.Errorf("login: %w", err)
	}
	return e.install(ctx, res, true)
}

func (e *Engine) Register(ctx context.Context, username, password string) (User, error) {
	res, err := e.remote.Register(ctx, username, password)
	if err != nil {
		return User{}, fmt.Errorf("register: %w", err)
	}
	return e.install(ctx, res, true)
}

func (e *Engine) GuestLogin(ctx context.Context) (User, error) {
	res, err := e.remote.GuestLogin(ctx)
	if err != nil {
		return User{}, fmt.Errorf("guest login: %w", err)
	}
	return e.install(ctx, res, true)
}

// Restore reinstalls the persisted session without a network call.
func (e *Engine) Restore(ctx context.Context) (User, error) {
	saved, err := e.store.Load(ctx)
	if err != nil {
		return User{}, fmt.Errorf("restore session: %w", err)
	}
	if saved == nil {
		return User{}, ErrNoSession
	}
	return e.install(ctx, AuthResult{User: saved.User, Token: saved.Token}, false)
}

// install tears down whatever session is running and starts a new one.
func (e *Engine) install(ctx context.Context, res AuthResult, persist bool) (User, error) {
	if persist {
		if err := e.store.Save(ctx, SavedSession{User: res.User, Token: res.Token}); err != nil {
			return User{}, fmt.Errorf("save session: %w", err)
		}
	}
	e.sched.Stop()

	e.mu.Lock()
	e.gen++
	e.resetLocked()
	s := newSession(res.User, res.Token)
	e.session = s
	coins := res.User.Coins
	e.recon.Apply(s, newUpdate(SourceLogin, &coins, nil))
	e.mu.Unlock()

	e.log.Infof("session %s started for %s (id=%d)", s.ID, res.User.Username, res.User.ID)
	e.changed()
	return res.User, nil
}

func (e *Engine) resetLocked() {
	e.session = nil
	e.titles = nil
	e.tasks = nil
	e.chat.Clear()
	e.recon.Reset()
	e.purchase.reset()
	e.sending = false
}

// Logout stops both timers, drops all session state and clears the store.
// Responses still in flight are discarded when they arrive.
func (e *Engine) Logout(ctx context.Context) error {
	e.sched.Stop()

	e.mu.Lock()
	e.gen++
	had := e.session != nil
	e.resetLocked()
	e.mu.Unlock()

	if had {
		e.log.Infof("session ended")
	}
	e.changed()
	if err := e.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Start runs the timers for the current session and performs the initial
// fetch of the profile, titles, tasks and messages. The profile replaces the
// balance a restored session was saved with.
func (e *Engine) Start(ctx context.Context) error {
	if _, err := e.begin(); err != nil {
		return err
	}
	e.sched.Start(ctx, e.Tick, e.PollChat)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := e.Refresh(gctx)
		return err
	})
	g.Go(func() error { return e.Load(gctx) })
	return g.Wait()
}

// Stop tears the timers down while keeping the session. Responses issued
// before Stop are discarded.
func (e *Engine) Stop() {
	e.sched.Stop()
	e.mu.Lock()
	e.gen++
	e.purchase.busy = false
	e.sending = false
	e.mu.Unlock()
}

func (e *Engine) Scheduler() *Scheduler { return e.sched }

// Load fetches titles, tasks and messages concurrently.
func (e *Engine) Load(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return e.RefreshTitles(gctx) })
	g.Go(func() error { return e.RefreshTasks(gctx) })
	g.Go(func() error { return e.PollChat(gctx) })
	return g.Wait()
}

// refetch reloads titles and/or tasks concurrently; failures are logged only.
func (e *Engine) refetch(ctx context.Context, titles, tasks bool) {
	var g errgroup.Group
	if titles {
		g.Go(func() error { return e.RefreshTitles(ctx) })
	}
	if tasks {
		g.Go(func() error { return e.RefreshTasks(ctx) })
	}
	switch err := g.Wait(); {
	case err == nil:
	case errors.Is(err, ErrStale), errors.Is(err, ErrNoSession):
		e.log.Debugf("refetch discarded: %v", err)
	default:
		e.log.Warnf("refetch after reconcile: %v", err)
	}
}

func (e *Engine) emit(out Outcome, extra ...Notification) {
	o := e.obs()
	for _, n := range extra {
		o.Notify(n)
	}
	for _, n := range out.Notifications {
		e.log.Infof("task completed: %s (+%d)", n.Title, n.Reward)
		o.Notify(n)
	}
	o.Changed()
}

// reconcile applies u if the session that issued t is still current.
func (e *Engine) reconcile(ctx context.Context, t ticket, u Update) (Outcome, error) {
	e.mu.Lock()
	if !e.liveLocked(t) {
		e.mu.Unlock()
		e.log.Debugf("%s response arrived after session end; discarded", u.Source)
		return Outcome{}, ErrStale
	}
	out := e.recon.Apply(e.session, u)
	if out.BalanceChanged {
		e.persistLocked(ctx)
	}
	e.mu.Unlock()
	if out.BalanceChanged {
		e.log.Debugf("%s: balance %d", u.Source, out.Balance)
	}
	return out, nil
}

// persistLocked writes the current user and reconciled balance to the store.
// It runs under e.mu so a concurrent Logout cannot be undone by a late save.
func (e *Engine) persistLocked(ctx context.Context) {
	u := e.session.User
	u.Coins = e.session.balance
	if err := e.store.Save(ctx, SavedSession{User: u, Token: e.session.Token}); err != nil {
		e.log.Warnf("save session balance: %v", err)
	}
}

// Tick advances presence time by the configured minutes.
func (e *Engine) Tick(ctx context.Context) error {
	t, err := e.begin()
	if err != nil {
		return err
	}
	res, err := e.remote.UpdateTime(ctx, t.user.ID, e.opts.PresenceMinutes)
	if err != nil {
		return fmt.Errorf("update time: %w", err)
	}
	out, err := e.reconcile(ctx, t, newUpdate(SourcePresence, res.Coins, res.CompletedTasks))
	if err != nil {
		return err
	}
	e.emit(out)
	e.refetch(ctx, false, true)
	return nil
}

// PollChat replaces the rendered chat log with the latest history.
func (e *Engine) PollChat(ctx context.Context) error {
	t, err := e.begin()
	if err != nil {
		return err
	}
	msgs, err := e.remote.Messages(ctx, e.opts.ChatHistoryLimit)
	if err != nil {
		return fmt.Errorf("get messages: %w", err)
	}
	e.mu.Lock()
	if !e.liveLocked(t) {
		e.mu.Unlock()
		e.log.Debugf("chat poll arrived after session end; discarded")
		return ErrStale
	}
	e.chat.Replace(msgs)
	e.mu.Unlock()
	e.changed()
	return nil
}

func (e *Engine) RefreshTitles(ctx context.Context) error {
	t, err := e.begin()
	if err != nil {
		return err
	}
	titles, err := e.remote.Titles(ctx, t.user.ID)
	if err != nil {
		return fmt.Errorf("get titles: %w", err)
	}
	e.mu.Lock()
	if !e.liveLocked(t) {
		e.mu.Unlock()
		return ErrStale
	}
	e.titles = titles
	e.mu.Unlock()
	e.changed()
	return nil
}

func (e *Engine) RefreshTasks(ctx context.Context) error {
	t, err := e.begin()
	if err != nil {
		return err
	}
	tasks, err := e.remote.Tasks(ctx, t.user.ID)
	if err != nil {
		return fmt.Errorf("get tasks: %w", err)
	}
	e.mu.Lock()
	if !e.liveLocked(t) {
		e.mu.Unlock()
		return ErrStale
	}
	e.tasks = tasks
	e.mu.Unlock()
	e.changed()
	return nil
}

// Refresh reads the profile and reconciles its balance.
func (e *Engine) Refresh(ctx context.Context) (Profile, error) {
	t, err := e.begin()
	if err != nil {
		return Profile{}, err
	}
	p, err := e.remote.Profile(ctx, t.user.ID)
	if err != nil {
		return Profile{}, fmt.Errorf("get profile: %w", err)
	}
	e.mu.Lock()
	if !e.liveLocked(t) {
		e.mu.Unlock()
		return Profile{}, ErrStale
	}
	e.session.User.Username = p.Username
	e.session.User.IsGuest = p.IsGuest
	e.session.User.IsAdmin = p.IsAdmin
	coins := p.Coins
	out := e.recon.Apply(e.session, newUpdate(SourceProfile, &coins, nil))
	e.persistLocked(ctx)
	e.mu.Unlock()
	e.emit(out)
	return p, nil
}

// SendMessage posts body to the chat and appends the server's copy of it.
// Only one send runs at a time.
func (e *Engine) SendMessage(ctx context.Context, body string) (Message, error) {
	b, err := normalizeMessage(body)
	if err != nil {
		return Message{}, err
	}
	e.mu.Lock()
	if e.session == nil {
		e.mu.Unlock()
		return Message{}, ErrNoSession
	}
	if e.sending {
		e.mu.Unlock()
		return Message{}, ErrBusy
	}
	e.sending = true
	t := e.ticketLocked()
	e.mu.Unlock()
	e.changed()

	rec, err := e.remote.SendMessage(ctx, t.user.ID, t.user.Username, b)

	e.mu.Lock()
	if !e.liveLocked(t) {
		e.mu.Unlock()
		return Message{}, ErrStale
	}
	e.sending = false
	if err != nil {
		e.mu.Unlock()
		e.changed()
		return Message{}, fmt.Errorf("send message: %w", err)
	}
	e.chat.Append(rec.Message)
	out := e.recon.Apply(e.session, newUpdate(SourceChat, rec.Coins, rec.CompletedTasks))
	if out.BalanceChanged {
		e.persistLocked(ctx)
	}
	e.mu.Unlock()

	e.emit(out)
	e.refetch(ctx, false, true)
	return rec.Message, nil
}

// RecordAction sends a progress signal. Completions it reports are reconciled.
func (e *Engine) RecordAction(ctx context.Context, actionType string, value int) error {
	t, err := e.begin()
	if err != nil {
		return err
	}
	res, err := e.remote.DoAction(ctx, t.user.ID, actionType, value)
	if err != nil {
		e.log.Warnf("action %s: %v", actionType, err)
		return fmt.Errorf("action %s: %w", actionType, err)
	}
	out, err := e.reconcile(ctx, t, newUpdate(SourceAction, res.Coins, res.CompletedTasks))
	if err != nil {
		return err
	}
	e.emit(out)
	e.refetch(ctx, false, true)
	return nil
}

// State is an immutable copy of everything a view renders.
type State struct {
	LoggedIn  bool
	SessionID string
	User      User
	Balance   int
	Titles    []Title
	Tasks     []Task
	Messages  []Message
	Proposal  *Proposal
	Sending   bool
}

func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return State{}
	}
	u := e.session.User
	u.Coins = e.session.balance
	st := State{
		LoggedIn:  true,
		SessionID: e.session.ID,
		User:      u,
		Balance:   e.session.balance,
		Titles:    append([]Title(nil), e.titles...),
		Tasks:     append([]Task(nil), e.tasks...),
		Messages:  e.chat.Messages(),
		Proposal:  e.purchase.view(e.session.balance),
		Sending:   e.sending,
	}
	return st
}
