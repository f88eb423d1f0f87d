// Package logging wires subsystem loggers onto one decred/slog backend. The
// dashboard owns the terminal, so logs go to a file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/decred/slog"
)

// Subsystem tags.
const (
	Engine    = "ENGN"
	Scheduler = "SCHD"
	Remote    = "RMTE"
	Storage   = "STOR"
	TUI       = "TUI"
	CLI       = "CLI"
)

type Backend struct {
	backend *slog.Backend
	level   slog.Level
	closer  io.Closer
}

// New writes to w at the named level (trace, debug, info, warn, error,
// critical, off).
func New(w io.Writer, level string) (*Backend, error) {
	lvl, ok := slog.LevelFromString(strings.ToLower(strings.TrimSpace(level)))
	if !ok {
		return nil, fmt.Errorf("unknown log level %q", level)
	}
	return &Backend{backend: slog.NewBackend(w), level: lvl}, nil
}

// OpenFile appends to path, creating its directory.
func OpenFile(path, level string) (*Backend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	b, err := New(f, level)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	b.closer = f
	return b, nil
}

func (b *Backend) Logger(subsystem string) slog.Logger {
	if b == nil {
		return slog.Disabled
	}
	l := b.backend.Logger(subsystem)
	l.SetLevel(b.level)
	return l
}

func (b *Backend) Close() error {
	if b == nil || b.closer == nil {
		return nil
	}
	return b.closer.Close()
}
