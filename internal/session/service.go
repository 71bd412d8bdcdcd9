// Package session implements login, validation, and logout of
// cookie-backed sessions. PostgreSQL is the source of truth; Redis holds
// a short-lived snapshot keyed by a hash of the token.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bookserver/bookserver/internal/auth"
	"github.com/bookserver/bookserver/internal/model"
	"github.com/bookserver/bookserver/internal/repository"
)

// Service errors.
var (
	// ErrInvalidCredentials is returned for every login failure.
	// It deliberately does not say which field was wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidSession is returned when a token is missing, malformed,
	// expired, or revoked. All cases look the same to the caller.
	ErrInvalidSession = errors.New("invalid or expired session")
)

// dummyHash is a syntactically valid PHC string that no password hashes to.
// Verification runs against it when the username is unknown so login takes
// the same time either way.
const dummyHash = "$argon2id$v=19$m=65536,t=3,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// UserStore is the subset of the repository the service needs for users.
type UserStore interface {
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// SessionStore is the subset of the repository the service needs for sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, session *model.Session) error
	GetSessionByID(ctx context.Context, id string) (*model.Session, error)
	RevokeSession(ctx context.Context, id string) error
}

// SnapshotCache caches session snapshots between validations.
type SnapshotCache interface {
	GetSession(ctx context.Context, cacheKey string) (*model.CachedSession, error)
	SetSession(ctx context.Context, cacheKey string, cached *model.CachedSession) error
	DeleteSession(ctx context.Context, cacheKey string) error
}

// Service handles session lifecycle.
type Service struct {
	users    UserStore
	sessions SessionStore
	cache    SnapshotCache
	ttl      time.Duration
}

// NewService creates a session Service.
func NewService(users UserStore, sessions SessionStore, cache SnapshotCache, ttl time.Duration) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		cache:    cache,
		ttl:      ttl,
	}
}

// LoginInput defines the credentials and client metadata for a login attempt.
type LoginInput struct {
	Username  string
	Password  string
	IP        string
	UserAgent string
}

// Login validates credentials and issues a fresh session.
// Any failure returns ErrInvalidCredentials without revealing whether the
// username or the password was wrong.
func (s *Service) Login(ctx context.Context, input LoginInput) (*model.Session, *model.User, error) {
	if input.Username == "" || input.Password == "" {
		// Burn a verification anyway to keep timing flat.
		_, _ = auth.VerifyPassword(input.Password, dummyHash)
		return nil, nil, ErrInvalidCredentials
	}

	user, err := s.users.GetUserByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			_, _ = auth.VerifyPassword(input.Password, dummyHash)
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("lookup user: %w", err)
	}

	match, err := auth.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil || !match {
		return nil, nil, ErrInvalidCredentials
	}

	token, err := auth.NewSessionToken()
	if err != nil {
		return nil, nil, fmt.Errorf("issue token: %w", err)
	}

	now := time.Now()
	sess := &model.Session{
		ID:        token,
		UserID:    user.ID,
		IP:        input.IP,
		UserAgent: input.UserAgent,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}

	if err := s.sessions.CreateSession(ctx, sess); err != nil {
		return nil, nil, fmt.Errorf("persist session: %w", err)
	}

	// Best effort; a cold cache just means the first validation hits the DB.
	_ = s.cache.SetSession(ctx, auth.QuickHash(token), model.NewCachedSession(sess, user))

	return sess, user, nil
}

// Validate resolves a session token to its authenticated principal.
// Expired and revoked sessions fail identically with ErrInvalidSession.
func (s *Service) Validate(ctx context.Context, token string) (*auth.Principal, error) {
	if !auth.ValidateTokenFormat(token) {
		return nil, ErrInvalidSession
	}

	cacheKey := auth.QuickHash(token)

	cached, _ := s.cache.GetSession(ctx, cacheKey)
	if cached != nil && time.Now().Before(cached.Expiry()) {
		return &auth.Principal{
			SessionID: token,
			User: &model.User{
				ID:           cached.UserID,
				Username:     cached.Username,
				CourseName:   cached.CourseName,
				IsInstructor: cached.Instructor(),
			},
		}, nil
	}

	sess, err := s.sessions.GetSessionByID(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("lookup session: %w", err)
	}

	switch sess.State() {
	case model.SessionActive:
		// proceed
	case model.SessionExpired:
		// Lazily mark the one-way transition; validation already failed.
		_ = s.sessions.RevokeSession(ctx, token)
		return nil, ErrInvalidSession
	default:
		return nil, ErrInvalidSession
	}

	user, err := s.users.GetUserByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// A session must always reference an existing user.
			_ = s.sessions.RevokeSession(ctx, token)
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("lookup session user: %w", err)
	}

	_ = s.cache.SetSession(ctx, cacheKey, model.NewCachedSession(sess, user))

	return &auth.Principal{SessionID: token, User: user}, nil
}

// Logout revokes the session for the given token.
// Idempotent: an unknown, malformed, or already-revoked token is a
// no-op success.
func (s *Service) Logout(ctx context.Context, token string) error {
	if !auth.ValidateTokenFormat(token) {
		return nil
	}

	// Evict the snapshot before touching the row so a concurrent
	// validation cannot repopulate from a stale read.
	if err := s.cache.DeleteSession(ctx, auth.QuickHash(token)); err != nil {
		return fmt.Errorf("evict session cache: %w", err)
	}

	if err := s.sessions.RevokeSession(ctx, token); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	return nil
}
