package root

import (
	"bytes"
	"strings"
	"testing"

	"titleshop/internal/engine"
)

func TestReadLineTrimsNewline(t *testing.T) {
	got, err := readLine(strings.NewReader("hunter2\r\nrest"))
	if err != nil {
		t.Fatalf("readLine: %v", err)
	}
	if got != "hunter2" {
		t.Fatalf("readLine=%q, want hunter2", got)
	}
	got, err = readLine(strings.NewReader("no-newline"))
	if err != nil || got != "no-newline" {
		t.Fatalf("readLine=%q,%v, want no-newline", got, err)
	}
}

func TestParseIDArgs(t *testing.T) {
	check := parseIDArgs("user_id", "amount")
	if err := check(nil, []string{"3", "100"}); err != nil {
		t.Fatalf("valid args: %v", err)
	}
	if err := check(nil, []string{"3"}); err == nil {
		t.Fatalf("missing amount accepted")
	}
	if err := check(nil, []string{"3", "lots"}); err == nil || !strings.Contains(err.Error(), "amount") {
		t.Fatalf("err=%v, want amount error", err)
	}
}

func TestPrintObserverReportsCompletions(t *testing.T) {
	var buf bytes.Buffer
	o := printObserver{w: &buf}
	o.Notify(engine.Notification{Kind: engine.NotifyTaskCompleted, Title: "Spend 15 minutes", Reward: 50})
	o.Notify(engine.Notification{Kind: engine.NotifyPurchased, Title: "Novice"})
	out := buf.String()
	if !strings.Contains(out, "Spend 15 minutes") || !strings.Contains(out, "+50") {
		t.Fatalf("output=%q", out)
	}
	if strings.Contains(out, "Novice") {
		t.Fatalf("purchase notification printed: %q", out)
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"login", "register", "guest", "logout", "status", "titles", "buy", "tasks", "chat", "admin", "board"}
	rootCmd.AddCommand(newLoginCmd(), newRegisterCmd(), newGuestCmd(), newLogoutCmd(), newStatusCmd(),
		newTitlesCmd(), newBuyCmd(), newTasksCmd(), newChatCmd(), newAdminCmd(), newBoardCmd())
	for _, name := range want {
		c, _, err := rootCmd.Find([]string{name})
		if err != nil || c.Name() != name {
			t.Fatalf("command %q not found: %v", name, err)
		}
	}
}
