package csrf

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestIssueSetsCookieOnce(t *testing.T) {
	g := New()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	tok := g.Issue(rec, req)
	if tok == "" {
		t.Fatal("no token issued")
	}
	if len(tok) != 64 { // 32 random bytes, hex encoded
		t.Fatalf("token length %d, want 64 hex chars", len(tok))
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value != tok {
		t.Fatalf("cookie not set with issued token")
	}
	if cookies[0].HttpOnly {
		t.Fatal("cookie must stay readable by client script")
	}
	if cookies[0].SameSite != http.SameSiteStrictMode {
		t.Fatal("expected SameSite=Strict default")
	}

	// A request that already carries the cookie gets the same token back and
	// no new cookie.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	if got := g.Issue(rec, req); got != tok {
		t.Fatalf("existing token not reused: got %q want %q", got, tok)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("cookie re-set despite being present")
	}
}

func TestValidate(t *testing.T) {
	g := New()
	token := strings.Repeat("ab", 32)

	withCookie := func(val string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		if val != "" {
			req.AddCookie(&http.Cookie{Name: g.CookieName(), Value: val})
		}
		return req
	}

	// Missing header.
	if g.Validate(withCookie(token)) {
		t.Fatal("valid without header token")
	}
	// Missing cookie.
	req := withCookie("")
	req.Header.Set(g.HeaderName(), token)
	if g.Validate(req) {
		t.Fatal("valid without cookie token")
	}
	// Mismatch.
	req = withCookie(token)
	req.Header.Set(g.HeaderName(), strings.Repeat("cd", 32))
	if g.Validate(req) {
		t.Fatal("valid with unequal tokens")
	}
	// Match.
	req = withCookie(token)
	req.Header.Set(g.HeaderName(), token)
	if !g.Validate(req) {
		t.Fatal("byte-identical tokens should validate")
	}
}

func TestValidateLastByteDiffers(t *testing.T) {
	// Regression against short-circuit comparison bugs: equal length, equal
	// prefix, only the final byte differs.
	g := New()
	token := strings.Repeat("a", 63) + "b"
	almost := strings.Repeat("a", 63) + "c"

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.AddCookie(&http.Cookie{Name: g.CookieName(), Value: token})
	req.Header.Set(g.HeaderName(), almost)
	if g.Validate(req) {
		t.Fatal("tokens differing in the last byte must not validate")
	}
}

func TestConstantTimeEqual(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"", "", true},
		{"abc", "abc", true},
		{"abc", "abd", false},
		{"abc", "ab", false},
		{"abc", "abcd", false},
	}
	for _, tc := range cases {
		if got := constantTimeEqual(tc.a, tc.b); got != tc.want {
			t.Fatalf("constantTimeEqual(%q, %q)=%v want %v", tc.a, tc.b, got, tc.want)
		}
	}
}
