package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"

	"github.com/openmics/shield/csrf"
	"github.com/openmics/shield/identity"
	"github.com/openmics/shield/limit"
	"github.com/openmics/shield/session"
)

// RouteContext is what a protected business handler receives alongside the
// request: the resolved caller (empty for anonymous callers on routes that
// allow them) and the host's data accessor.
type RouteContext struct {
	UserID string
	Data   session.DataSource
}

// Handler is a protected business handler. A returned error is logged with
// full detail server-side and converted to a generic 500; it never reaches
// the client.
type Handler func(w http.ResponseWriter, r *http.Request, rc *RouteContext) error

// RouteOptions configures Protect for one route.
type RouteOptions struct {
	// AllowedMethods is the method allowlist. Empty allows nothing, which is
	// almost certainly a wiring mistake but fails closed.
	AllowedMethods []string
	// Limiter and Limit set the per-route budget. A nil Limiter skips rate
	// limiting at this layer (the edge budget still applies).
	Limiter *limit.Limiter
	Limit   limit.Config
	// Scope namespaces the rate-limit key. Defaults to the request path, so
	// each route gets its own budget per client.
	Scope string
	// RequireAuth rejects anonymous callers with 401.
	RequireAuth bool
	// Sessions resolves the caller. Required when RequireAuth is set.
	Sessions session.Provider
	// CSRF validates unsafe methods. Leaving it nil while allowing unsafe
	// methods is a misconfiguration and those methods are rejected, unless
	// SkipCSRF explicitly opts the route out.
	CSRF     *csrf.Guard
	SkipCSRF bool
	// Data is passed through to the handler untouched.
	Data session.DataSource
	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// Protect wraps a business handler with the per-route checks, short-circuiting
// on the first failure: method allowlist, rate limit, authentication, CSRF for
// unsafe methods, then the handler itself behind panic recovery.
func Protect(h Handler, opts RouteOptions) http.HandlerFunc {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return func(rw http.ResponseWriter, r *http.Request) {
		w := &statusWriter{ResponseWriter: rw}

		if !slices.Contains(opts.AllowedMethods, r.Method) {
			logger.Info("method rejected", "method", r.Method, "path", r.URL.Path, "kind", ErrPolicyRejected)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		if opts.Limiter != nil {
			scope := opts.Scope
			if scope == "" {
				scope = r.URL.Path
			}
			d, err := opts.Limiter.Check(r.Context(), scope, identity.Identify(r), opts.Limit)
			if err != nil {
				logger.Error("rate limit store failure", "path", r.URL.Path, "err", err, "kind", ErrUpstream)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			if !d.Allowed {
				logger.Info("route throttled", "scope", scope, "path", r.URL.Path, "kind", ErrThrottled)
				writeThrottled(w, d)
				return
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		}

		rc := &RouteContext{Data: opts.Data}
		if opts.Sessions != nil {
			user, err := opts.Sessions.CurrentUser(r)
			if err != nil {
				// An unreachable session provider cannot identify anyone;
				// treat the caller as anonymous and let RequireAuth decide.
				logger.Warn("session provider failed", "path", r.URL.Path, "err", err, "kind", ErrUpstream)
			} else if user != nil {
				rc.UserID = user.ID
			}
		}
		if opts.RequireAuth && rc.UserID == "" {
			logger.Info("unauthenticated caller rejected", "path", r.URL.Path, "kind", ErrPolicyRejected)
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		if !safeMethod(r.Method) && !opts.SkipCSRF {
			if opts.CSRF == nil {
				logger.Error("unsafe method allowed with no CSRF guard", "method", r.Method, "path", r.URL.Path, "kind", ErrMisconfigured)
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			if !opts.CSRF.Validate(r) {
				logger.Info("csrf validation failed", "path", r.URL.Path, "kind", ErrPolicyRejected)
				http.Error(w, "invalid csrf token", http.StatusForbidden)
				return
			}
		}
		if safeMethod(r.Method) && opts.CSRF != nil {
			opts.CSRF.Issue(w, r)
		}

		if err := invoke(h, w, r, rc); err != nil {
			logger.Error("handler failed", "method", r.Method, "path", r.URL.Path, "err", err, "kind", ErrUpstream)
			if !w.wrote {
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}
	}
}

// invoke runs the handler with panic recovery. A panic is reported as an
// error so the caller logs it and answers with the same generic 500.
func invoke(h Handler, w http.ResponseWriter, r *http.Request, rc *RouteContext) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("handler panic: %v", rec)
		}
	}()
	return h(w, r, rc)
}

func safeMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}
