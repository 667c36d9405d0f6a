// Package middleware provides the request-protection pipeline: the Edge gate
// applied in front of all routes, and the Protect wrapper for individual API
// handlers.
package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/openmics/shield/limit"
)

// Rejection taxonomy. These never reach the client; they discriminate log
// lines and let callers test rejection classes.
var (
	// ErrPolicyRejected marks final rejections the client must change the
	// request to clear: blocklist, attack path, method, auth, CSRF.
	ErrPolicyRejected = errors.New("request rejected by policy")
	// ErrThrottled marks rate-limit rejections, retryable after Retry-After.
	ErrThrottled = errors.New("request throttled")
	// ErrUpstream marks handler or collaborator failures.
	ErrUpstream = errors.New("upstream failure")
	// ErrMisconfigured marks guard wiring mistakes, treated as rejections,
	// never as an implicit allow.
	ErrMisconfigured = errors.New("protection misconfigured")
)

// retryAfterSeconds is the integer ceiling of the reset delay in seconds,
// never below 1.
func retryAfterSeconds(d time.Duration) string {
	sec := int((d + time.Second - 1) / time.Second)
	if sec < 1 {
		sec = 1
	}
	return strconv.Itoa(sec)
}

// writeThrottled emits the 429 with its retry-timing headers. The body is a
// short machine-readable reason only; counts, keys, and internal state stay
// server-side.
func writeThrottled(w http.ResponseWriter, d limit.Decision) {
	w.Header().Set("Retry-After", retryAfterSeconds(d.ResetIn))
	w.Header().Set("X-RateLimit-Remaining", "0")
	w.Header().Set("X-RateLimit-Reset", d.ResetAt.UTC().Format(time.RFC3339))
	http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
}
