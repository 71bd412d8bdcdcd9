package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
)

// Session token format: bs_<64 hex chars> (32 random bytes).
// The token is the session identifier stored in the session cookie.
const tokenSecretBytes = 32

var (
	// ErrInvalidTokenFormat indicates the token format is invalid.
	ErrInvalidTokenFormat = errors.New("invalid session token format")
	// tokenFormatRegex validates the token format.
	tokenFormatRegex = regexp.MustCompile(`^bs_[a-f0-9]{64}$`)
)

// NewSessionToken generates a fresh unguessable session token.
func NewSessionToken() (string, error) {
	secret := make([]byte, tokenSecretBytes)
	if _, err := rand.Read(secret); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return "bs_" + hex.EncodeToString(secret), nil
}

// ValidateTokenFormat checks if the token matches the expected format.
// Rejecting malformed tokens before any store lookup keeps garbage out of
// the cache and the database.
func ValidateTokenFormat(token string) bool {
	return tokenFormatRegex.MatchString(token)
}
