package middleware

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OTelConfig configures the tracing middleware.
type OTelConfig struct {
	// ServiceName names the tracer.
	ServiceName string
	// Filter skips tracing (but still serves) requests it returns false for,
	// e.g. health checks.
	Filter func(r *http.Request) bool
}

// OTel returns middleware that opens one span per request and records the
// outcome, including protection rejections (403/404/429), as span attributes.
// It uses the globally registered tracer provider; with none registered it is
// a no-op passthrough.
func OTel(service string) Middleware {
	return OTelWithConfig(OTelConfig{ServiceName: service})
}

// OTelWithConfig is OTel with explicit options.
func OTelWithConfig(cfg OTelConfig) Middleware {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "shield"
	}
	tracer := otel.Tracer(cfg.ServiceName)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			if cfg.Filter != nil && !cfg.Filter(r) {
				next.ServeHTTP(rw, r)
				return
			}
			ctx, span := tracer.Start(r.Context(), r.Method+" "+r.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.request.method", r.Method),
					attribute.String("url.path", r.URL.Path),
				),
			)
			defer span.End()

			w := &statusWriter{ResponseWriter: rw}
			next.ServeHTTP(w, r.WithContext(ctx))

			status := w.status
			if status == 0 {
				status = http.StatusOK
			}
			span.SetAttributes(attribute.Int("http.response.status_code", status))
			if status >= 500 {
				span.SetStatus(codes.Error, http.StatusText(status))
			} else if status >= 400 {
				// Rejections from the protection layer land here; the reason
				// stays in logs, only the class is on the span.
				span.SetStatus(codes.Error, "request rejected")
			} else {
				span.SetStatus(codes.Ok, "")
			}
		})
	}
}
