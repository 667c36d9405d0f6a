// Package csrf implements double-submit cookie CSRF protection.
// The same opaque token lives in a cookie and is echoed back by the client in
// a request header; validity is the two values matching, compared in constant
// time. The token is never stored server-side: the cookie is the verifiable
// state.
package csrf

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"
)

// Config configures a Guard.
//
// The cookie must stay readable by client script (HttpOnly off) so the page
// can echo the token back in the header; secrecy from the client is not part
// of the double-submit design.
type Config struct {
	// CookieName is the CSRF cookie name.
	CookieName string
	// HeaderName is the request header carrying the echoed token.
	HeaderName string
	// TokenLength is the random token size in bytes before hex encoding.
	// 32 bytes (256 bits) minimum is recommended.
	TokenLength int
	// CookiePath sets the path attribute of the CSRF cookie.
	CookiePath string
	// CookieSecure sets the Secure flag; keep true in production.
	CookieSecure bool
	// CookieSameSite sets the SameSite policy. Strict by default.
	CookieSameSite http.SameSite
	// TTL sets the cookie expiration.
	TTL time.Duration
}

// DefaultConfig returns the production defaults: 32-byte hex tokens,
// Secure, SameSite=Strict, 12-hour expiry.
func DefaultConfig() Config {
	return Config{
		CookieName:     "csrf-token",
		HeaderName:     "X-CSRF-Token",
		TokenLength:    32,
		CookiePath:     "/",
		CookieSecure:   true,
		CookieSameSite: http.SameSiteStrictMode,
		TTL:            12 * time.Hour,
	}
}

// Guard issues and validates double-submit tokens.
type Guard struct {
	cfg Config
}

// New returns a Guard. Zero-value fields in cfg fall back to DefaultConfig.
func New(cfgs ...Config) *Guard {
	cfg := DefaultConfig()
	if len(cfgs) > 0 {
		c := cfgs[0]
		if c.CookieName == "" {
			c.CookieName = cfg.CookieName
		}
		if c.HeaderName == "" {
			c.HeaderName = cfg.HeaderName
		}
		if c.TokenLength == 0 {
			c.TokenLength = cfg.TokenLength
		}
		if c.CookiePath == "" {
			c.CookiePath = cfg.CookiePath
		}
		if c.CookieSameSite == 0 {
			c.CookieSameSite = cfg.CookieSameSite
		}
		if c.TTL == 0 {
			c.TTL = cfg.TTL
		}
		cfg = c
	}
	return &Guard{cfg: cfg}
}

// HeaderName returns the configured request header name.
func (g *Guard) HeaderName() string { return g.cfg.HeaderName }

// CookieName returns the configured cookie name.
func (g *Guard) CookieName() string { return g.cfg.CookieName }

// Issue returns the request's existing token if the cookie is present,
// otherwise generates a fresh one and sets the response cookie. Call on safe
// methods so the token exists before the first mutating request.
func (g *Guard) Issue(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(g.cfg.CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	tok := generateToken(g.cfg.TokenLength)
	http.SetCookie(w, &http.Cookie{
		Name:     g.cfg.CookieName,
		Value:    tok,
		Path:     g.cfg.CookiePath,
		Secure:   g.cfg.CookieSecure,
		HttpOnly: false, // client script must read it to echo it back
		SameSite: g.cfg.CookieSameSite,
		Expires:  time.Now().Add(g.cfg.TTL),
	})
	return tok
}

// Validate reports whether the header token matches the cookie token.
// Absence of either is a failure; presence is compared in constant time.
func (g *Guard) Validate(r *http.Request) bool {
	cookie, err := r.Cookie(g.cfg.CookieName)
	if err != nil || cookie.Value == "" {
		return false
	}
	header := r.Header.Get(g.cfg.HeaderName)
	if header == "" {
		return false
	}
	return constantTimeEqual(cookie.Value, header)
}

func generateToken(length int) string {
	b := make([]byte, length)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// constantTimeEqual compares two strings without short-circuiting, so timing
// does not leak which byte differed. Length mismatch returns early: length is
// not secret.
func constantTimeEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	var res byte
	for i := 0; i < len(a); i++ {
		res |= a[i] ^ b[i]
	}
	return res == 0
}
