package middleware

import "net/http"

// Middleware wraps an http.Handler, enabling composition of the protection
// stages in front of the host application's router.
type Middleware func(http.Handler) http.Handler

// Chain composes middlewares so the first argument is the outermost.
//
// Example:
//
//	handler := middleware.Chain(
//		middleware.RequestID(),
//		middleware.Edge(edgeCfg),
//	)(router)
func Chain(mws ...Middleware) Middleware {
	return func(next http.Handler) http.Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}
