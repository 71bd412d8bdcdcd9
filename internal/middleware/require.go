package middleware

import (
	"fmt"
	"net/http"

	"github.com/bookserver/bookserver/internal/auth"
)

// RequireInstructor returns middleware that restricts an endpoint to
// instructors. Must be applied after SessionAuth.
func RequireInstructor() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := auth.PrincipalFromContext(r.Context())
			if p == nil {
				writeRoleError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
				return
			}

			if !p.User.IsInstructor {
				writeRoleError(w, http.StatusForbidden, "FORBIDDEN", "Instructor role required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeRoleError writes a role-related error response.
func writeRoleError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(fmt.Sprintf(`{"error":"%s","code":"%s"}`, message, code)))
}
