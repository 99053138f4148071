// Package idempotency guards the ticket issuance endpoint against
// duplicate execution on retried requests. A client-supplied key plus a
// fingerprint of the request body maps to the response produced the
// first time the key was used.
package idempotency

import (
	"context"
	"encoding/json"
)

// Outcome of a Begin call.
type Outcome int

const (
	// Proceed means the key was unknown and is now reserved; the caller
	// must execute the operation and then Commit or Abort.
	Proceed Outcome = iota
	// Replay means the key was seen before with the same fingerprint;
	// the cached response must be returned without re-execution.
	Replay
	// Conflict means the key was seen before with a different
	// fingerprint; the caller must surface a client error.
	Conflict
)

func (o Outcome) String() string {
	switch o {
	case Proceed:
		return "proceed"
	case Replay:
		return "replay"
	case Conflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// CachedResponse is the payload stored against a committed key.
type CachedResponse struct {
	StatusCode int             `json:"status_code"`
	Body       json.RawMessage `json:"body"`
}

// Store is the idempotency cache contract. Begin must be atomic across
// concurrent callers sharing the same new key: exactly one caller
// receives Proceed, the rest block until the winner commits (Replay) or
// aborts (Proceed for the next waiter).
type Store interface {
	Begin(ctx context.Context, key, fingerprint string) (Outcome, *CachedResponse, error)

	// Commit stores the response for a reserved key. Must only be
	// called after receiving Proceed.
	Commit(ctx context.Context, key string, resp *CachedResponse) error

	// Abort releases a reservation after a failed execution so a retry
	// can run the operation again.
	Abort(ctx context.Context, key string) error
}
