package engine

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// ChatLog is the rendered message list. A poll replaces it wholesale; a
// successful send appends the server's canonical message until the next poll
// supersedes it.
type ChatLog struct {
	msgs []Message
}

func NewChatLog() *ChatLog {
	return &ChatLog{}
}

// Replace installs a polled list, ordered by id ascending with duplicate ids
// dropped.
func (c *ChatLog) Replace(list []Message) {
	out := make([]Message, 0, len(list))
	seen := make(map[int64]struct{}, len(list))
	for _, m := range list {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	c.msgs = out
}

// Append adds a just-sent message. It reports false if a message with the
// same id is already rendered.
func (c *ChatLog) Append(m Message) bool {
	for i := range c.msgs {
		if c.msgs[i].ID == m.ID {
			return false
		}
	}
	c.msgs = append(c.msgs, m)
	return true
}

func (c *ChatLog) Messages() []Message {
	out := make([]Message, len(c.msgs))
	copy(out, c.msgs)
	return out
}

func (c *ChatLog) Clear() { c.msgs = nil }

// normalizeMessage trims the body and enforces the length bound.
func normalizeMessage(body string) (string, error) {
	b := strings.TrimSpace(body)
	if b == "" {
		return "", ErrEmptyMessage
	}
	if utf8.RuneCountInString(b) > MaxMessageLength {
		return "", ErrMessageTooLong
	}
	return b, nil
}
