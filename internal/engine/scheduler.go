package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/decred/slog"
)

const (
	DefaultPresenceInterval = 60 * time.Second
	DefaultChatInterval     = 3 * time.Second
	DefaultPresenceMinutes  = 1
)

// TickFunc is one poll. Errors are logged and never stop the timer.
type TickFunc func(ctx context.Context) error

// Scheduler owns the presence and chat timers of one session. Each timer has
// its own cancel func; stopping is idempotent.
type Scheduler struct {
	presenceEvery time.Duration
	chatEvery     time.Duration
	log           slog.Logger

	mu             sync.Mutex
	cancelPresence context.CancelFunc
	cancelChat     context.CancelFunc
	wg             sync.WaitGroup
}

func NewScheduler(presenceEvery, chatEvery time.Duration, log slog.Logger) *Scheduler {
	if presenceEvery <= 0 {
		presenceEvery = DefaultPresenceInterval
	}
	if chatEvery <= 0 {
		chatEvery = DefaultChatInterval
	}
	if log == nil {
		log = slog.Disabled
	}
	return &Scheduler{presenceEvery: presenceEvery, chatEvery: chatEvery, log: log}
}

// Start stops any running timers and starts both loops under ctx.
func (s *Scheduler) Start(ctx context.Context, presence, chat TickFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()

	pctx, pcancel := context.WithCancel(ctx)
	cctx, ccancel := context.WithCancel(ctx)
	s.cancelPresence = pcancel
	s.cancelChat = ccancel

	s.wg.Add(2)
	go s.loop(pctx, "presence", s.presenceEvery, presence)
	go s.loop(cctx, "chat", s.chatEvery, chat)
	s.log.Debugf("timers started (presence=%s chat=%s)", s.presenceEvery, s.chatEvery)
}

func (s *Scheduler) loop(ctx context.Context, name string, every time.Duration, fn TickFunc) {
	defer s.wg.Done()
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if ctx.Err() != nil {
				return
			}
			err := fn(ctx)
			switch {
			case err == nil:
			case errors.Is(err, ErrStale), errors.Is(err, ErrNoSession), ctx.Err() != nil:
				s.log.Debugf("%s tick discarded: %v", name, err)
			default:
				s.log.Warnf("%s tick failed: %v", name, err)
			}
		}
	}
}

// Stop cancels both timers. It does not wait for an in-flight tick; results
// of such a tick are discarded by the session guard.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Scheduler) StopPresence() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelPresence != nil {
		s.cancelPresence()
		s.cancelPresence = nil
	}
}

func (s *Scheduler) StopChat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelChat != nil {
		s.cancelChat()
		s.cancelChat = nil
	}
}

func (s *Scheduler) stopLocked() {
	stopped := s.cancelPresence != nil || s.cancelChat != nil
	if s.cancelPresence != nil {
		s.cancelPresence()
		s.cancelPresence = nil
	}
	if s.cancelChat != nil {
		s.cancelChat()
		s.cancelChat = nil
	}
	if stopped {
		s.log.Debugf("timers stopped")
	}
}

// Running reports which timers are active.
func (s *Scheduler) Running() (presence, chat bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelPresence != nil, s.cancelChat != nil
}

// Wait blocks until every loop goroutine has returned.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
