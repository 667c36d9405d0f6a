// Package identity derives a stable client key from an HTTP request.
// The key feeds rate-limit buckets; it is a bucketing aid, not a security
// boundary, so the degraded fallback (hash of UA+Accept) is acceptable.
package identity

import (
	"hash/fnv"
	"net"
	"net/http"
	"strconv"
	"strings"
)

// Identify resolves a client identifier for the request.
// Preference order: X-Forwarded-For (first entry), X-Real-IP, RemoteAddr host
// part, then a stable hash of the User-Agent and Accept headers.
// It always returns a non-empty string and never fails.
func Identify(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// X-Forwarded-For may contain multiple IPs: client, proxy1, proxy2
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			if first := strings.TrimSpace(parts[0]); first != "" {
				return first
			}
		}
	}
	if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
		return strings.TrimSpace(xrip)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return fallback(r)
}

// fallback buckets header-stripped clients by UA+Accept. Two such clients with
// identical headers share a bucket; that collision is a deliberate tradeoff.
func fallback(r *http.Request) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(r.Header.Get("User-Agent")))
	_, _ = h.Write([]byte(r.Header.Get("Accept")))
	return "fallback-" + strconv.FormatUint(uint64(h.Sum32()), 36)
}
