package tui

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"titleshop/internal/engine"
)

type recordingSender struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (r *recordingSender) Send(msg tea.Msg) {
	r.mu.Lock()
	r.msgs = append(r.msgs, msg)
	r.mu.Unlock()
}

func (r *recordingSender) notes() []engine.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []engine.Notification
	for _, m := range r.msgs {
		if n, ok := m.(notifyMsg); ok {
			out = append(out, n.n)
		}
	}
	return out
}

func TestObserverKeepsEveryNotificationUnderBackpressure(t *testing.T) {
	const total = 1000
	obs := newProgramObserver()
	for i := 0; i < total; i++ {
		obs.Notify(engine.Notification{Kind: engine.NotifyTaskCompleted, Title: fmt.Sprintf("task %d", i)})
		obs.Changed()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := &recordingSender{}
	go obs.pump(ctx, rec)

	deadline := time.Now().Add(2 * time.Second)
	for len(rec.notes()) < total {
		if time.Now().After(deadline) {
			t.Fatalf("notifications=%d, want %d", len(rec.notes()), total)
		}
		time.Sleep(5 * time.Millisecond)
	}
	for i, n := range rec.notes() {
		if want := fmt.Sprintf("task %d", i); n.Title != want {
			t.Fatalf("notes[%d]=%q, want %q", i, n.Title, want)
		}
	}
}

func TestObserverCoalescesChanged(t *testing.T) {
	obs := newProgramObserver()
	for i := 0; i < 50; i++ {
		obs.Changed()
	}
	notes, dirty := obs.drain()
	if len(notes) != 0 || !dirty {
		t.Fatalf("drain=%d,%v, want 0 notes and dirty", len(notes), dirty)
	}
	if _, dirty := obs.drain(); dirty {
		t.Fatalf("dirty after drain")
	}
}
