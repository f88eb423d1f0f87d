package engine

import (
	"errors"
	"fmt"
)

var (
	ErrNoSession      = errors.New("no active session")
	ErrStale          = errors.New("session ended before the response arrived")
	ErrBusy           = errors.New("a request is already in flight")
	ErrNoProposal     = errors.New("no title selected")
	ErrTitleNotFound  = errors.New("title not found")
	ErrAlreadyOwned   = errors.New("title already owned")
	ErrEmptyMessage   = errors.New("message is empty")
	ErrMessageTooLong = fmt.Errorf("message exceeds %d characters", MaxMessageLength)
)

// AffordabilityError is the local, display-only refusal to confirm a purchase.
// The game service re-checks the balance on every purchase regardless.
type AffordabilityError struct {
	Price   int
	Balance int
}

func (e AffordabilityError) Error() string {
	return fmt.Sprintf("not enough coins: price %d, balance %d", e.Price, e.Balance)
}

// rejection is implemented by errors carrying a domain refusal from a remote
// service ({"error": "..."} bodies).
type rejection interface {
	Rejection() string
}

// RejectionMessage returns the verbatim refusal text if err is a domain
// rejection.
func RejectionMessage(err error) (string, bool) {
	var r rejection
	if errors.As(err, &r) {
		return r.Rejection(), true
	}
	return "", false
}

func IsRejection(err error) bool {
	_, ok := RejectionMessage(err)
	return ok
}
