package tui

import (
	"context"
	"errors"
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/decred/slog"

	"titleshop/internal/engine"
)

// RunBoard runs the dashboard for the engine's current session. The engine's
// timers run for as long as the program does.
func RunBoard(ctx context.Context, eng *engine.Engine, out io.Writer, log slog.Logger) error {
	if log == nil {
		log = slog.Disabled
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newBoardModel(ctx, eng, log)
	p := tea.NewProgram(m, tea.WithOutput(out), tea.WithContext(ctx))

	obs := newProgramObserver()
	eng.SetObserver(obs)
	go obs.pump(ctx, p)
	defer func() {
		eng.Stop()
		eng.SetObserver(nil)
	}()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// programObserver queues engine events for the program. Engine calls can
// originate inside Update, where a direct Send would deadlock, so nothing
// here blocks. Notifications are never dropped; Changed signals coalesce.
type programObserver struct {
	mu      sync.Mutex
	pending []engine.Notification
	dirty   bool
	wake    chan struct{}
}

type sender interface {
	Send(msg tea.Msg)
}

func newProgramObserver() *programObserver {
	return &programObserver{wake: make(chan struct{}, 1)}
}

func (o *programObserver) Notify(n engine.Notification) {
	o.mu.Lock()
	o.pending = append(o.pending, n)
	o.mu.Unlock()
	o.signal()
}

func (o *programObserver) Changed() {
	o.mu.Lock()
	o.dirty = true
	o.mu.Unlock()
	o.signal()
}

func (o *programObserver) signal() {
	select {
	case o.wake <- struct{}{}:
	default:
	}
}

// drain takes everything queued so far.
func (o *programObserver) drain() ([]engine.Notification, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	notes, dirty := o.pending, o.dirty
	o.pending, o.dirty = nil, false
	return notes, dirty
}

func (o *programObserver) pump(ctx context.Context, p sender) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-o.wake:
		}
		notes, dirty := o.drain()
		for _, n := range notes {
			p.Send(notifyMsg{n: n})
		}
		if dirty && len(notes) == 0 {
			p.Send(changedMsg{})
		}
	}
}
