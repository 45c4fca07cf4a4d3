package httpapi

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crickarena/crickarena/internal/domain/user"
)

// staticVerifier accepts exactly one token.
type staticVerifier struct {
	token     string
	principal user.Principal
}

func (v staticVerifier) Verify(token string) (user.Principal, error) {
	if token != v.token {
		return user.Principal{}, errors.New("invalid token")
	}
	return v.principal, nil
}

func principalEcho(t *testing.T, want user.Principal, expect bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := principalFromContext(r.Context())
		if ok != expect {
			t.Errorf("principal present = %v, want %v", ok, expect)
		}
		if ok && p != want {
			t.Errorf("principal = %+v, want %+v", p, want)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	principal := user.Principal{UserID: "user-1", Email: "u@example.com"}
	verifier := staticVerifier{token: "good-token", principal: principal}

	tests := []struct {
		name       string
		prepare    func(r *http.Request)
		wantStatus int
	}{
		{
			name:       "no token",
			prepare:    func(*http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "valid cookie",
			prepare: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: "ca_session", Value: "good-token"})
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "valid bearer",
			prepare: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer good-token")
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "bad token",
			prepare: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer wrong-token")
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "malformed authorization header",
			prepare: func(r *http.Request) {
				r.Header.Set("Authorization", "good-token")
			},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler := RequireAuth(verifier, "ca_session", principalEcho(t, principal, true))
			r := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
			tc.prepare(r)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)
			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tc.wantStatus)
			}
		})
	}
}

func TestRequireAuth_CookieWinsOverHeader(t *testing.T) {
	t.Parallel()

	verifier := staticVerifier{token: "cookie-token", principal: user.Principal{UserID: "user-1"}}
	handler := RequireAuth(verifier, "ca_session", principalEcho(t, user.Principal{UserID: "user-1"}, true))

	r := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	r.AddCookie(&http.Cookie{Name: "ca_session", Value: "cookie-token"})
	r.Header.Set("Authorization", "Bearer header-token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestOptionalAuth(t *testing.T) {
	t.Parallel()

	principal := user.Principal{UserID: "user-1"}
	verifier := staticVerifier{token: "good-token", principal: principal}

	anonymous := OptionalAuth(verifier, "ca_session", principalEcho(t, principal, false))
	r := httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil)
	w := httptest.NewRecorder()
	anonymous.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("anonymous status = %d, want 200", w.Code)
	}

	// Invalid token degrades to anonymous instead of failing.
	r = httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil)
	r.Header.Set("Authorization", "Bearer wrong-token")
	w = httptest.NewRecorder()
	anonymous.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("invalid-token status = %d, want 200", w.Code)
	}

	authed := OptionalAuth(verifier, "ca_session", principalEcho(t, principal, true))
	r = httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil)
	r.AddCookie(&http.Cookie{Name: "ca_session", Value: "good-token"})
	w = httptest.NewRecorder()
	authed.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("authed status = %d, want 200", w.Code)
	}
}

func TestRequireCronToken(t *testing.T) {
	t.Parallel()

	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// No configured token leaves the endpoint open.
	open := RequireCronToken("", ok)
	w := httptest.NewRecorder()
	open.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cron/sync-contests", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("open status = %d, want 200", w.Code)
	}

	gated := RequireCronToken("cron-secret", ok)

	w = httptest.NewRecorder()
	gated.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cron/sync-contests", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("missing token status = %d, want 401", w.Code)
	}

	r := httptest.NewRequest(http.MethodGet, "/api/cron/sync-contests", nil)
	r.Header.Set("X-Cron-Token", "cron-secret")
	w = httptest.NewRecorder()
	gated.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("header token status = %d, want 200", w.Code)
	}

	r = httptest.NewRequest(http.MethodGet, "/api/cron/sync-contests?token=cron-secret", nil)
	w = httptest.NewRecorder()
	gated.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("query token status = %d, want 200", w.Code)
	}

	r = httptest.NewRequest(http.MethodGet, "/api/cron/sync-contests", nil)
	r.Header.Set("X-Cron-Token", "wrong")
	w = httptest.NewRecorder()
	gated.ServeHTTP(w, r)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong token status = %d, want 401", w.Code)
	}
}

func TestCORS(t *testing.T) {
	t.Parallel()

	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("named origin", func(t *testing.T) {
		handler := CORS([]string{"https://app.example.com"}, ok)
		r := httptest.NewRequest(http.MethodGet, "/api/matches", nil)
		r.Header.Set("Origin", "https://app.example.com")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
			t.Fatalf("allow-origin = %q", got)
		}
		if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
			t.Fatalf("allow-credentials = %q", got)
		}
	})

	t.Run("unlisted origin gets no headers", func(t *testing.T) {
		handler := CORS([]string{"https://app.example.com"}, ok)
		r := httptest.NewRequest(http.MethodGet, "/api/matches", nil)
		r.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Fatalf("allow-origin = %q, want empty", got)
		}
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
	})

	t.Run("wildcard", func(t *testing.T) {
		handler := CORS([]string{"*"}, ok)
		r := httptest.NewRequest(http.MethodGet, "/api/matches", nil)
		r.Header.Set("Origin", "https://anything.example.com")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Fatalf("allow-origin = %q, want *", got)
		}
		if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "" {
			t.Fatalf("wildcard must not allow credentials, got %q", got)
		}
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		called := false
		handler := CORS([]string{"*"}, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			called = true
		}))
		r := httptest.NewRequest(http.MethodOptions, "/api/matches", nil)
		r.Header.Set("Origin", "https://app.example.com")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		if w.Code != http.StatusNoContent {
			t.Fatalf("preflight status = %d, want 204", w.Code)
		}
		if called {
			t.Fatal("preflight must not reach the next handler")
		}
	})
}

func TestShouldTraceRequest(t *testing.T) {
	t.Parallel()

	for _, path := range []string{"/healthz", "/health", "/livez", "/readyz", " /HEALTHZ "} {
		if shouldTraceRequest(path) {
			t.Fatalf("expected %q to be excluded from tracing", path)
		}
	}
	if !shouldTraceRequest("/api/matches") {
		t.Fatal("expected api paths to be traced")
	}
}
