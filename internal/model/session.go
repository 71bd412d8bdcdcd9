package model

import (
	"strconv"
	"time"
)

// SessionState represents the lifecycle state of a session.
type SessionState string

const (
	SessionActive  SessionState = "active"
	SessionExpired SessionState = "expired"
	SessionRevoked SessionState = "revoked"
)

// Session is a server-tracked proof of login bound to a user.
// Transitions are one-way: active becomes expired when ExpiresAt passes,
// or revoked on logout. Both terminal states deny authorization.
type Session struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	IP        string     `json:"-"`
	UserAgent string     `json:"-"`
	RevokedAt *time.Time `json:"-"`
	ExpiresAt time.Time  `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// State computes the current session state.
// Revocation takes precedence over expiry; validation treats both the same.
func (s *Session) State() SessionState {
	if s.RevokedAt != nil {
		return SessionRevoked
	}
	if time.Now().After(s.ExpiresAt) {
		return SessionExpired
	}
	return SessionActive
}

// IsActive returns true if the session still authorizes requests.
func (s *Session) IsActive() bool {
	return s.State() == SessionActive
}

// CachedSession represents the session snapshot stored in Redis.
// It is marshaled as a JSON value, not a Redis hash, so the fields
// carry json tags. String types keep the payload stable across
// serialization round trips.
type CachedSession struct {
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
	CourseName   string `json:"course_name"`
	IsInstructor string `json:"is_instructor"` // "1" or "0"
	ExpiresAt    string `json:"expires_at"`    // Unix timestamp
}

// NewCachedSession builds the cache snapshot for a session and its user.
func NewCachedSession(s *Session, u *User) *CachedSession {
	return &CachedSession{
		UserID:       u.ID,
		Username:     u.Username,
		CourseName:   u.CourseName,
		IsInstructor: boolToString(u.IsInstructor),
		ExpiresAt:    strconv.FormatInt(s.ExpiresAt.Unix(), 10),
	}
}

// Expiry parses the cached expiry timestamp.
// Returns the zero time if the field is missing or malformed.
func (c *CachedSession) Expiry() time.Time {
	ts, err := strconv.ParseInt(c.ExpiresAt, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(ts, 0)
}

// Instructor reports whether the cached user holds the instructor role.
func (c *CachedSession) Instructor() bool {
	return c.IsInstructor == "1"
}

// boolToString converts boolean to "1" or "0".
func boolToString(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
