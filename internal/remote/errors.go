package remote

import (
	"fmt"
	"net/http"
)

// TransportError is a failure to obtain a usable reply: network error,
// unexpected status without an error body, or an undecodable body.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RejectionError is a domain refusal: the service answered with
// {"error": "..."}.
type RejectionError struct {
	Op      string
	Status  int
	Message string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Rejection returns the service's message verbatim.
func (e *RejectionError) Rejection() string { return e.Message }

// Forbidden reports an authorization refusal from a privileged endpoint.
func (e *RejectionError) Forbidden() bool { return e.Status == http.StatusForbidden }
