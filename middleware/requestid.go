package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// RequestIDConfig configures the RequestID middleware.
// Header sets the header name (default: X-Request-ID).
type RequestIDConfig struct {
	Header string
}

type ridKey struct{}

// RequestID returns middleware that tags each request and response with a
// unique ID so rejects logged at the edge can be correlated with client
// reports. An inbound ID is trusted and propagated; otherwise a new UUID is
// minted.
func RequestID(cfgs ...RequestIDConfig) Middleware {
	cfg := RequestIDConfig{Header: "X-Request-ID"}
	if len(cfgs) > 0 && cfgs[0].Header != "" {
		cfg.Header = cfgs[0].Header
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(cfg.Header)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(cfg.Header, id)
			ctx := context.WithValue(r.Context(), ridKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDFromContext returns the request ID from the context, if available.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if s, ok := ctx.Value(ridKey{}).(string); ok {
		return s, true
	}
	return "", false
}
