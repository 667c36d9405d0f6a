package middleware

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/openmics/shield/blocklist"
	"github.com/openmics/shield/identity"
	"github.com/openmics/shield/limit"
	"github.com/openmics/shield/session"
)

// Scope names used for the edge budgets. Scopes partition the store so auth
// and general API traffic never share a counter.
const (
	ScopeAuth = "auth"
	ScopeAPI  = "api"
)

// EdgeConfig configures the outermost gate. It applies to every route, not
// just the API: a request passes the blocklist, the path-scoped rate limit,
// and the attack-path check before the session refresh and normal routing.
type EdgeConfig struct {
	// Limiter backs the path-scoped budgets. Nil disables edge rate limiting.
	Limiter *limit.Limiter
	// AuthLimit applies under AuthPrefixes; stricter than APILimit.
	AuthLimit limit.Config
	// APILimit applies under APIPrefixes.
	APILimit limit.Config
	// AuthPrefixes marks authentication-related paths. Defaults cover the
	// usual login/signup surface.
	AuthPrefixes []string
	// APIPrefixes marks general API paths. Anything outside both prefix sets
	// (static assets, pages) is not rate limited at this layer.
	APIPrefixes []string
	// Sessions, when set, has its Refresh called before dispatch so session
	// cookies rotate on every page load. Refresh failures are logged, not
	// fatal: the request still reaches routing.
	Sessions session.Provider
	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

func defaultEdgeConfig() EdgeConfig {
	return EdgeConfig{
		AuthLimit:    limit.Auth,
		APILimit:     limit.API,
		AuthPrefixes: []string{"/api/auth/", "/login", "/signup", "/password-reset"},
		APIPrefixes:  []string{"/api/"},
	}
}

// Edge returns the outermost middleware. Each stage either passes the request
// to the next or terminates it; there is no retry within one traversal. The
// client retries after Retry-After.
func Edge(cfgs ...EdgeConfig) Middleware {
	cfg := defaultEdgeConfig()
	if len(cfgs) > 0 {
		c := cfgs[0]
		if c.AuthLimit == (limit.Config{}) {
			c.AuthLimit = cfg.AuthLimit
		}
		if c.APILimit == (limit.Config{}) {
			c.APILimit = cfg.APILimit
		}
		if c.AuthPrefixes == nil {
			c.AuthPrefixes = cfg.AuthPrefixes
		}
		if c.APIPrefixes == nil {
			c.APIPrefixes = cfg.APIPrefixes
		}
		cfg = c
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path

			// Scanners hide payloads behind percent-encoding; match against
			// the decoded request line when it decodes cleanly.
			rawURL := r.URL.RequestURI()
			if dec, err := url.QueryUnescape(rawURL); err == nil {
				rawURL = dec
			}
			if name, blocked := blocklist.Match(rawURL, path); blocked {
				logger.Warn("blocked request signature", "signature", name, "method", r.Method, "path", path, "kind", ErrPolicyRejected)
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}

			if cfg.Limiter != nil {
				scope, lc, limited := scopeFor(cfg, path)
				if limited {
					d, err := cfg.Limiter.Check(r.Context(), scope, identity.Identify(r), lc)
					if err != nil {
						logger.Error("rate limit store failure", "scope", scope, "path", path, "err", err, "kind", ErrUpstream)
						http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
						return
					}
					if !d.Allowed {
						logger.Info("edge throttled", "scope", scope, "path", path, "kind", ErrThrottled)
						writeThrottled(w, d)
						return
					}
					w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
				}
			}

			if blocklist.IsAttackPath(path) {
				// 404, not 403: a scanner learns nothing about whether the
				// path exists.
				logger.Info("attack path probe", "method", r.Method, "path", path, "kind", ErrPolicyRejected)
				http.NotFound(w, r)
				return
			}

			if cfg.Sessions != nil {
				if err := cfg.Sessions.Refresh(w, r); err != nil {
					logger.Warn("session refresh failed", "path", path, "err", err, "kind", ErrUpstream)
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// scopeFor picks the budget for a path: auth prefixes win over api prefixes;
// everything else is unscoped at the edge.
func scopeFor(cfg EdgeConfig, path string) (string, limit.Config, bool) {
	for _, p := range cfg.AuthPrefixes {
		if strings.HasPrefix(path, p) {
			return ScopeAuth, cfg.AuthLimit, true
		}
	}
	for _, p := range cfg.APIPrefixes {
		if strings.HasPrefix(path, p) {
			return ScopeAPI, cfg.APILimit, true
		}
	}
	return "", limit.Config{}, false
}
