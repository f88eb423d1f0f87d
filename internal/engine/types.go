package engine

import (
	"strings"
	"time"
)

// User is the identity issued by the auth service. Coins is the balance the
// service reported at the time the object was produced; the engine never
// renders it directly once a session is running.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Coins    int    `json:"coins"`
	IsGuest  bool   `json:"isGuest"`
	IsAdmin  bool   `json:"isAdmin"`
}

type Title struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int    `json:"price"`
	SortOrder   int    `json:"sort_order"`
	Owned       bool   `json:"owned"`
}

type Task struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	TaskType    string `json:"task_type"`
	Reward      int    `json:"reward"`
	Progress    int    `json:"progress"`
	MaxProgress int    `json:"max_progress"`
	SortOrder   int    `json:"sort_order"`
	Completed   bool   `json:"completed"`
}

// Ratio returns progress in [0,1] for rendering.
func (t Task) Ratio() float64 {
	if t.Completed {
		return 1
	}
	if t.MaxProgress <= 0 {
		return 0
	}
	r := float64(t.Progress) / float64(t.MaxProgress)
	if r > 1 {
		return 1
	}
	if r < 0 {
		return 0
	}
	return r
}

// MaxMessageLength bounds a chat body, counted in runes.
const MaxMessageLength = 500

type Message struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"userId"`
	Username  string `json:"username"`
	Body      string `json:"message"`
	IsAdmin   bool   `json:"isAdmin"`
	CreatedAt string `json:"createdAt"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Created parses CreatedAt. The chat service emits ISO timestamps with or
// without a zone; zone-less values are read as UTC.
func (m Message) Created() (time.Time, bool) {
	s := strings.TrimSpace(m.CreatedAt)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CompletedTask is returned inline by mutating calls when the call pushed a
// task over its completion threshold.
type CompletedTask struct {
	Name   string `json:"name"`
	Reward int    `json:"reward"`
}

type AuthResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type Profile struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Coins     int    `json:"coins"`
	IsGuest   bool   `json:"isGuest"`
	IsAdmin   bool   `json:"isAdmin"`
	TimeSpent int    `json:"timeSpent"`
}

// Progress is the reply to time and action signals.
type Progress struct {
	Coins          *int            `json:"coins,omitempty"`
	TimeSpent      int             `json:"timeSpent,omitempty"`
	CompletedTasks []CompletedTask `json:"completedTasks,omitempty"`
}

type PurchaseReceipt struct {
	Coins          int             `json:"coins"`
	Message        string          `json:"message"`
	CompletedTasks []CompletedTask `json:"completedTasks,omitempty"`
}

type SendReceipt struct {
	Success        bool            `json:"success"`
	Message        Message         `json:"message"`
	Coins          *int            `json:"coins,omitempty"`
	CompletedTasks []CompletedTask `json:"completedTasks,omitempty"`
}

type OnlineUser struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Coins      int    `json:"coins"`
	IsGuest    bool   `json:"isGuest"`
	LastActive string `json:"lastActive,omitempty"`
}

type Grant struct {
	Success  bool   `json:"success"`
	Username string `json:"username"`
	NewCoins int    `json:"newCoins"`
	Message  string `json:"message"`
}

type Stats struct {
	TotalUsers     int          `json:"totalUsers"`
	OnlineUsers    int          `json:"onlineUsers"`
	TotalMessages  int          `json:"totalMessages"`
	TotalPurchases int          `json:"totalPurchases"`
	TopUsers       []OnlineUser `json:"topUsers"`
}

type Transaction struct {
	ID          int64  `json:"id"`
	Amount      int    `json:"amount"`
	Type        string `json:"type"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
}

// Action types understood by the game service's progress signal.
const (
	ActionVisitShop = "visit_shop"
	ActionOpenTab   = "open_tab"
	ActionViewTitle = "view_title"
)
