package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"titleshop/internal/engine"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return New(Endpoints{
		Auth:  ts.URL + "/auth",
		Game:  ts.URL + "/game",
		Chat:  ts.URL + "/chat",
		Admin: ts.URL + "/admin",
	}, ts.Client(), nil)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestLoginSendsActionAndDecodesUser(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method=%s, want POST", r.Method)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Errorf("missing X-Request-ID header")
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["action"] != "login" || body["username"] != "neo" || body["password"] != "pw" {
			t.Errorf("body=%v", body)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"user":  map[string]any{"id": 7, "username": "neo", "coins": 100, "isGuest": false, "isAdmin": true},
			"token": "tok",
		})
	})
	c := newTestClient(t, mux)

	res, err := c.Login(context.Background(), "neo", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.User.ID != 7 || res.User.Coins != 100 || !res.User.IsAdmin || res.Token != "tok" {
		t.Fatalf("Login=%+v", res)
	}
}

func TestRejectionIsSurfacedVerbatim(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/game/buy-title", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Недостаточно ТитулКоинов"})
	})
	mux.HandleFunc("/admin/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "Доступ запрещен"})
	})
	c := newTestClient(t, mux)

	_, err := c.BuyTitle(context.Background(), 1, 2)
	var rej *RejectionError
	if !errors.As(err, &rej) {
		t.Fatalf("BuyTitle err=%v, want RejectionError", err)
	}
	if msg, ok := engine.RejectionMessage(err); !ok || msg != "Недостаточно ТитулКоинов" {
		t.Fatalf("RejectionMessage=%q,%v", msg, ok)
	}
	if rej.Forbidden() {
		t.Fatalf("400 rejection reported as forbidden")
	}

	_, err = c.Stats(context.Background(), 1)
	if !errors.As(err, &rej) || !rej.Forbidden() {
		t.Fatalf("Stats err=%v, want forbidden rejection", err)
	}
}

func TestTransportErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/game/tasks", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "upstream down")
	})
	mux.HandleFunc("/game/titles", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "[{not json")
	})
	c := newTestClient(t, mux)

	_, err := c.Tasks(context.Background(), 1)
	var te *TransportError
	if !errors.As(err, &te) || te.Status != http.StatusBadGateway {
		t.Fatalf("Tasks err=%v, want TransportError 502", err)
	}
	if engine.IsRejection(err) {
		t.Fatalf("transport error classified as rejection")
	}

	_, err = c.Titles(context.Background(), 1)
	if !errors.As(err, &te) {
		t.Fatalf("Titles err=%v, want TransportError on bad JSON", err)
	}

	dead := New(Endpoints{Game: "http://127.0.0.1:1/game"}, nil, nil)
	if _, err := dead.Profile(context.Background(), 1); !errors.As(err, &te) {
		t.Fatalf("Profile on closed port err=%v, want TransportError", err)
	}
}

func TestUpdateTimeDecodesCompletions(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/game/update-time", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			UserID  int64 `json:"userId"`
			Minutes int   `json:"minutes"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.UserID != 3 || body.Minutes != 1 {
			t.Errorf("body=%+v", body)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":        true,
			"coins":          150,
			"timeSpent":      15,
			"completedTasks": []map[string]any{{"name": "Spend 15 minutes", "reward": 50}},
		})
	})
	c := newTestClient(t, mux)

	res, err := c.UpdateTime(context.Background(), 3, 1)
	if err != nil {
		t.Fatalf("UpdateTime: %v", err)
	}
	if res.Coins == nil || *res.Coins != 150 {
		t.Fatalf("Coins=%v, want 150", res.Coins)
	}
	if len(res.CompletedTasks) != 1 || res.CompletedTasks[0].Name != "Spend 15 minutes" || res.CompletedTasks[0].Reward != 50 {
		t.Fatalf("CompletedTasks=%+v", res.CompletedTasks)
	}
}

func TestQueryParameters(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/chat", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("limit"); got != "50" {
			t.Errorf("limit=%q", got)
		}
		if got := r.URL.Query().Get("sinceId"); got != "" {
			t.Errorf("sinceId=%q, want empty", got)
		}
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": 1, "userId": 2, "username": "a", "message": "hi", "isAdmin": false, "createdAt": "2024-05-01T10:00:00.123456"},
		})
	})
	mux.HandleFunc("/admin/transactions", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("adminId") != "1" || q.Get("targetUserId") != "9" {
			t.Errorf("query=%v", q)
		}
		writeJSON(w, http.StatusOK, []map[string]any{{"id": 1, "amount": -500, "type": "purchase", "description": "x"}})
	})
	c := newTestClient(t, mux)

	msgs, err := c.Messages(context.Background(), 50)
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Body != "hi" {
		t.Fatalf("Messages=%+v", msgs)
	}
	if _, ok := msgs[0].Created(); !ok {
		t.Fatalf("Created() failed to parse %q", msgs[0].CreatedAt)
	}

	txs, err := c.Transactions(context.Background(), 1, 9)
	if err != nil {
		t.Fatalf("Transactions: %v", err)
	}
	if len(txs) != 1 || txs[0].Amount != -500 {
		t.Fatalf("Transactions=%+v", txs)
	}
}
