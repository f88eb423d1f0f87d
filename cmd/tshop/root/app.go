package root

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"

	"github.com/joho/godotenv"

	"titleshop/internal/config"
	"titleshop/internal/engine"
	"titleshop/internal/logging"
	"titleshop/internal/remote"
	"titleshop/internal/storage"
	"titleshop/internal/ui"
)

var errNotLoggedIn = errors.New("not logged in; run `tshop login <username>` or `tshop guest`")

type app struct {
	cfg  config.Config
	logs *logging.Backend
	db   *sql.DB
	eng  *engine.Engine
}

func openApp(ctx context.Context) (*app, func(), error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	logPath, err := cfg.LogFile()
	if err != nil {
		return nil, nil, err
	}
	logs, err := logging.OpenFile(logPath, cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}

	override := dbPath
	if override == "" {
		override = cfg.DBPath
	}
	path, err := storage.ResolveDBPath(override)
	if err != nil {
		_ = logs.Close()
		return nil, nil, err
	}
	db, err := storage.Open(ctx, path)
	if err != nil {
		_ = logs.Close()
		return nil, nil, err
	}
	logs.Logger(logging.Storage).Debugf("session db %s", path)

	client := remote.New(remote.Endpoints{
		Auth:  cfg.Endpoints.Auth,
		Game:  cfg.Endpoints.Game,
		Chat:  cfg.Endpoints.Chat,
		Admin: cfg.Endpoints.Admin,
	}, &http.Client{Timeout: cfg.HTTP.Timeout}, logs.Logger(logging.Remote))

	eng := engine.New(client, engine.StoreFromDB(db), engine.Options{
		PresenceInterval: cfg.Poll.PresenceInterval,
		ChatInterval:     cfg.Poll.ChatInterval,
		PresenceMinutes:  cfg.Poll.PresenceMinutes,
		ChatHistoryLimit: cfg.Chat.HistoryLimit,
		Logger:           logs.Logger(logging.Engine),
		SchedulerLogger:  logs.Logger(logging.Scheduler),
	})

	cleanup := func() {
		eng.Stop()
		_ = db.Close()
		_ = logs.Close()
	}
	return &app{cfg: cfg, logs: logs, db: db, eng: eng}, cleanup, nil
}

// openSession opens the app and restores the saved session.
func openSession(ctx context.Context) (*app, func(), error) {
	a, cleanup, err := openApp(ctx)
	if err != nil {
		return nil, nil, err
	}
	if _, err := a.eng.Restore(ctx); err != nil {
		cleanup()
		if errors.Is(err, engine.ErrNoSession) {
			return nil, nil, errNotLoggedIn
		}
		return nil, nil, err
	}
	return a, cleanup, nil
}

// describe renders service rejections verbatim.
func describe(err error) string {
	if msg, ok := engine.RejectionMessage(err); ok {
		return msg
	}
	return err.Error()
}

// printObserver reports completions raised by one-shot commands.
type printObserver struct {
	w io.Writer
}

func (p printObserver) Notify(n engine.Notification) {
	switch n.Kind {
	case engine.NotifyTaskCompleted:
		fmt.Fprintf(p.w, "%s %s %s\n", ui.Good.Render(ui.IconDone+" Task completed:"), n.Title, ui.Delta(n.Reward))
	case engine.NotifyGrant:
		fmt.Fprintf(p.w, "%s %s\n", ui.Gold.Render(ui.IconCoin+" Granted"), ui.Delta(n.Reward))
	}
}

func (printObserver) Changed() {}
