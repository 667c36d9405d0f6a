package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOTelDoesNotBlock(t *testing.T) {
	h := OTel("test-svc")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("code=%d", rec.Code)
	}
}

func TestOTelRejectionStillWritten(t *testing.T) {
	h := OTel("svc")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/x", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("code=%d", rec.Code)
	}
}

func TestOTelFilterSkipsTracing(t *testing.T) {
	h := OTelWithConfig(OTelConfig{
		ServiceName: "svc",
		Filter:      func(r *http.Request) bool { return r.URL.Path != "/healthz" },
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("filtered request must still be served: %d", rec.Code)
	}
}
