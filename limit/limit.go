// Package limit implements scoped fixed-window rate limiting behind a
// pluggable store. The in-memory store is the default; a Redis-backed store
// exists for multi-process deployments where per-process budgets would
// otherwise multiply by instance count.
package limit

import (
	"context"
	"time"
)

// Decision is the outcome of one rate-limit check.
type Decision struct {
	Allowed   bool
	Remaining int           // quota left in the current window
	ResetIn   time.Duration // time until the window resets
	ResetAt   time.Time     // wall-clock instant the window resets
}

// Store answers fixed-window checks for composite keys. Implementations must
// make the check-and-increment atomic; callers never see entries, only
// decisions.
type Store interface {
	Check(ctx context.Context, key string, cfg Config) (Decision, error)
	Close() error
}

// Key builds the composite store key for a scope and client identifier.
// The scope prefix keeps unrelated budgets (auth vs api) from sharing a
// counter even for the same caller.
func Key(scope, id string) string {
	return scope + ":" + id
}

// Limiter checks scoped budgets against a Store.
type Limiter struct {
	store Store
}

// New returns a Limiter backed by store.
func New(store Store) *Limiter {
	return &Limiter{store: store}
}

// Check applies cfg to the caller identified by id within scope.
func (l *Limiter) Check(ctx context.Context, scope, id string, cfg Config) (Decision, error) {
	return l.store.Check(ctx, Key(scope, id), cfg)
}

// Store exposes the underlying store, mainly so owners can Close it on
// shutdown.
func (l *Limiter) Store() Store { return l.store }
