// Package session declares the narrow interfaces this layer consumes from
// the host application's auth and data collaborators. Both are opaque,
// possibly-failing external calls; nothing here retries them.
package session

import "net/http"

// User is the authenticated caller as reported by the provider. Only the ID
// matters to the protection layer.
type User struct {
	ID string
}

// Provider is the external session system.
type Provider interface {
	// CurrentUser resolves the caller, or (nil, nil) when anonymous.
	CurrentUser(r *http.Request) (*User, error)
	// Refresh rotates or extends session cookies on the response. Its
	// internals belong to the host.
	Refresh(w http.ResponseWriter, r *http.Request) error
}

// DataSource is the host's business data accessor, passed through to
// protected handlers untouched.
type DataSource any
