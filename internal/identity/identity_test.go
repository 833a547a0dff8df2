package identity

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewSessionIDFormat(t *testing.T) {
	t.Parallel()

	id := NewSessionID()
	if !IsValidSessionID(id) {
		t.Fatalf("generated id %q does not match the expected format", id)
	}
	if other := NewSessionID(); other == id {
		t.Fatalf("consecutive ids must differ, got %q twice", id)
	}
}

func TestIsValidSessionID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id    string
		valid bool
	}{
		{"session-1700000000000-abc123def", true},
		{"session-1-000000000", true},
		{"", false},
		{"session-abc-123456789", false},
		{"session-1700000000000-ABC123DEF", false},
		{"session-1700000000000-abc123", false},
		{"sess-1700000000000-abc123def", false},
		{"session-1700000000000-abc123def-extra", false},
	}
	for _, tt := range tests {
		if got := IsValidSessionID(tt.id); got != tt.valid {
			t.Errorf("IsValidSessionID(%q) = %v, want %v", tt.id, got, tt.valid)
		}
	}
}

func TestMiddlewareMintsCookieOnFirstContact(t *testing.T) {
	t.Parallel()

	var seen string
	h := Middleware(true)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionIDFromContext(r.Context())
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if !IsValidSessionID(seen) {
		t.Fatalf("handler saw invalid session id %q", seen)
	}

	cookies := w.Result().Cookies()
	var cookie *http.Cookie
	for _, c := range cookies {
		if c.Name == SessionCookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatalf("expected %s cookie to be set", SessionCookieName)
	}
	if cookie.Value != seen {
		t.Fatalf("cookie %q does not match context id %q", cookie.Value, seen)
	}
	if !cookie.HttpOnly {
		t.Fatal("session cookie must be HttpOnly")
	}
	if cookie.Secure {
		t.Fatal("dev mode cookie must not require HTTPS")
	}
}

func TestMiddlewareReusesValidCookie(t *testing.T) {
	t.Parallel()

	const existing = "session-1700000000000-abc123def"

	var seen string
	h := Middleware(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: existing})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if seen != existing {
		t.Fatalf("expected existing identity %q to be reused, got %q", existing, seen)
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookieName {
			if !c.Secure {
				t.Fatal("production cookie must be Secure")
			}
			return
		}
	}
	t.Fatal("expected the cookie lifetime to be refreshed")
}

func TestMiddlewareReplacesMalformedCookie(t *testing.T) {
	t.Parallel()

	var seen string
	h := Middleware(true)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "forged-value"})
	h.ServeHTTP(httptest.NewRecorder(), req)

	if seen == "forged-value" {
		t.Fatal("malformed cookie value must not be trusted")
	}
	if !IsValidSessionID(seen) {
		t.Fatalf("replacement id %q is invalid", seen)
	}
}

func TestSessionIDFromContextDefaultsEmpty(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := SessionIDFromContext(req.Context()); got != "" {
		t.Fatalf("expected empty id for bare context, got %q", got)
	}
}
