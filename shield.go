// Package shield is a request-protection layer for HTTP applications: client
// identification, scoped fixed-window rate limiting, double-submit CSRF
// validation, and attack-signature blocking, composed as middleware mounted
// in front of the host router.
package shield

import (
	"net/http"

	"github.com/openmics/shield/middleware"
)

// Middleware wraps an http.Handler. Re-exported from middleware.Middleware.
type Middleware = middleware.Middleware

// EdgeConfig configures the outermost gate. Re-exported from middleware.EdgeConfig.
type EdgeConfig = middleware.EdgeConfig

// RouteOptions configures Protect for one route. Re-exported from middleware.RouteOptions.
type RouteOptions = middleware.RouteOptions

// RouteContext is what protected handlers receive. Re-exported from middleware.RouteContext.
type RouteContext = middleware.RouteContext

// Handler is a protected business handler. Re-exported from middleware.Handler.
type Handler = middleware.Handler

// Chain composes middlewares, first argument outermost. Re-exported from middleware.Chain.
func Chain(mws ...Middleware) Middleware { return middleware.Chain(mws...) }

// Edge returns the outermost gate applied to all routes. Re-exported from middleware.Edge.
func Edge(cfgs ...EdgeConfig) Middleware { return middleware.Edge(cfgs...) }

// Protect wraps a business handler with per-route checks. Re-exported from middleware.Protect.
func Protect(h Handler, opts RouteOptions) http.HandlerFunc { return middleware.Protect(h, opts) }
