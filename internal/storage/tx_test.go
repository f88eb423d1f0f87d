package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

func TestWithTxRollsBackOnPanic(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "tx.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	repo := NewSessionRepo(db)

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Fatalf("fn did not panic")
			}
		}()
		_ = WithTx(ctx, db, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, `DELETE FROM session`); err != nil {
				t.Fatalf("exec: %v", err)
			}
			panic("boom")
		})
	}()

	// One open connection: a leaked tx would block this save until the deadline.
	sctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := repo.Save(sctx, Session{UserID: 1, Username: "neo", Token: "t"}); err != nil {
		t.Fatalf("Save after panic: %v", err)
	}
	got, err := repo.Get(sctx)
	if err != nil || got == nil || got.Username != "neo" {
		t.Fatalf("Get=%+v,%v, want neo", got, err)
	}
}
