package auth

import (
	"context"

	"github.com/bookserver/bookserver/internal/model"
)

// Principal is the authenticated identity attached to a request.
type Principal struct {
	SessionID string
	User      *model.User
}

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// principalContextKey is the context key for storing the Principal.
	principalContextKey contextKey = "principal"
)

// ContextWithPrincipal adds the Principal to the context.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// PrincipalFromContext retrieves the Principal from the context.
// Returns nil if not present.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, ok := ctx.Value(principalContextKey).(*Principal)
	if !ok {
		return nil
	}
	return p
}

// MustPrincipalFromContext retrieves the Principal from the context.
// Panics if not present (use only when the session middleware has run).
func MustPrincipalFromContext(ctx context.Context) *Principal {
	p := PrincipalFromContext(ctx)
	if p == nil {
		panic("principal not found - ensure session middleware is applied")
	}
	return p
}

// UsernameFromContext is a convenience function to get the username from context.
// Returns empty string if not authenticated.
func UsernameFromContext(ctx context.Context) string {
	p := PrincipalFromContext(ctx)
	if p == nil || p.User == nil {
		return ""
	}
	return p.User.Username
}

// IsInstructor reports whether the authenticated user holds the instructor role.
func IsInstructor(ctx context.Context) bool {
	p := PrincipalFromContext(ctx)
	if p == nil || p.User == nil {
		return false
	}
	return p.User.IsInstructor
}
