package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bookserver/bookserver/internal/auth"
	"github.com/bookserver/bookserver/internal/model"
	"github.com/bookserver/bookserver/internal/session"
)

// mockSessionValidator is a mock implementation of SessionValidator.
type mockSessionValidator struct {
	principal *auth.Principal
	err       error
	gotToken  string
}

func (m *mockSessionValidator) Validate(ctx context.Context, token string) (*auth.Principal, error) {
	m.gotToken = token
	if m.err != nil {
		return nil, m.err
	}
	return m.principal, nil
}

func testPrincipal(instructor bool) *auth.Principal {
	return &auth.Principal{
		SessionID: "sess-1",
		User: &model.User{
			ID:           "user-1",
			Username:     "test_user_1",
			CourseName:   "test_course_1",
			IsInstructor: instructor,
		},
	}
}

func newSessionMiddleware(v *mockSessionValidator) func(http.Handler) http.Handler {
	return SessionAuth(SessionConfig{
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Sessions:   v,
		CookieName: "session_id",
	})
}

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestSessionAuth_CookieToken(t *testing.T) {
	v := &mockSessionValidator{principal: testPrincipal(false)}
	var called bool
	handler := newSessionMiddleware(v)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		p := auth.PrincipalFromContext(r.Context())
		if p == nil || p.User.Username != "test_user_1" {
			t.Errorf("principal not injected into context: %+v", p)
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "bs_token"})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if !called {
		t.Fatal("expected next handler to be called")
	}
	if v.gotToken != "bs_token" {
		t.Errorf("unexpected token passed to validator: %q", v.gotToken)
	}
}

func TestSessionAuth_BearerToken(t *testing.T) {
	v := &mockSessionValidator{principal: testPrincipal(false)}
	var called bool
	handler := newSessionMiddleware(v)(okHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer bs_bearer_token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if !called {
		t.Fatal("expected next handler to be called")
	}
	if v.gotToken != "bs_bearer_token" {
		t.Errorf("unexpected token passed to validator: %q", v.gotToken)
	}
}

func TestSessionAuth_CookieWinsOverBearer(t *testing.T) {
	v := &mockSessionValidator{principal: testPrincipal(false)}
	var called bool
	handler := newSessionMiddleware(v)(okHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "bs_cookie"})
	req.Header.Set("Authorization", "Bearer bs_bearer")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if v.gotToken != "bs_cookie" {
		t.Errorf("expected cookie token to win, got %q", v.gotToken)
	}
}

func TestSessionAuth_MissingToken(t *testing.T) {
	v := &mockSessionValidator{principal: testPrincipal(false)}
	var called bool
	handler := newSessionMiddleware(v)(okHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if called {
		t.Error("next handler should not be called without a token")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}
}

func TestSessionAuth_InvalidSession(t *testing.T) {
	v := &mockSessionValidator{err: session.ErrInvalidSession}
	var called bool
	handler := newSessionMiddleware(v)(okHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "bs_expired"})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if called {
		t.Error("next handler should not be called for an invalid session")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}
}

func TestRequireInstructor_Allowed(t *testing.T) {
	var called bool
	handler := RequireInstructor()(okHandler(&called))

	ctx := auth.ContextWithPrincipal(context.Background(), testPrincipal(true))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/books", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if !called {
		t.Error("expected instructor to pass")
	}
}

func TestRequireInstructor_Forbidden(t *testing.T) {
	var called bool
	handler := RequireInstructor()(okHandler(&called))

	ctx := auth.ContextWithPrincipal(context.Background(), testPrincipal(false))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/books", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if called {
		t.Error("student should not pass RequireInstructor")
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", rec.Code)
	}
}

func TestRequireInstructor_NoPrincipal(t *testing.T) {
	var called bool
	handler := RequireInstructor()(okHandler(&called))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/books", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}
}
