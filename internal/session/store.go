package session

import "context"

// Store persists exactly one Context per platform-qualified user id.
//
// Failure policy (applied by the router, which is the single writer):
// a Get error degrades to an in-memory default context for the turn; a Put
// error is logged and swallowed — a lost update must never abort message
// delivery, since the user can always re-issue "menu" to recover.
type Store interface {
	// Get returns the stored context, creating and persisting a default
	// one on first access.
	Get(ctx context.Context, userID string) (Context, error)
	// Put fully replaces the stored context (upsert semantics) and stamps
	// UpdatedAt.
	Put(ctx context.Context, userID string, sc Context) error
	// Delete removes the stored context. Used as courtesy cleanup after a
	// completed order; absence is not an error.
	Delete(ctx context.Context, userID string) error
}
