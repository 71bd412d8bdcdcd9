package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bookserver/bookserver/internal/auth"
)

// SessionValidator resolves a session token to an authenticated principal.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*auth.Principal, error)
}

// SessionConfig holds configuration for the session middleware.
type SessionConfig struct {
	Logger     *slog.Logger
	Sessions   SessionValidator
	CookieName string
}

// SessionAuth returns a middleware that authenticates requests from the
// session cookie or an Authorization bearer token. On success the
// principal is injected into the request context. All failures get the
// same 401 so a caller cannot distinguish expired from revoked from
// never-existed.
func SessionAuth(cfg SessionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractSessionToken(r, cfg.CookieName)
			if token == "" {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "missing_session"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			principal, err := cfg.Sessions.Validate(r.Context(), token)
			if err != nil {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "invalid_session"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			ctx := auth.ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractSessionToken reads the session token from the request.
// The cookie takes precedence; API clients may send the same token as
// "Authorization: Bearer <token>".
func extractSessionToken(r *http.Request, cookieName string) string {
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return ""
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Invalid or missing session","code":"UNAUTHORIZED"}`))
}
