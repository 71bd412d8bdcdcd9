package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/bookserver/bookserver/internal/auth"
	"github.com/bookserver/bookserver/internal/model"
	"github.com/bookserver/bookserver/internal/repository"
)

// User service errors.
var (
	ErrUsernameExists  = errors.New("username already exists")
	ErrInvalidUsername = errors.New("invalid username")
	ErrInvalidPassword = errors.New("password does not meet requirements")
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrUserNotFound    = errors.New("user not found")
)

// Username: 3-64 chars, lowercase alphanumeric plus underscore, dot, hyphen.
var usernameRegex = regexp.MustCompile(`^[a-z0-9._-]{3,64}$`)

const minPasswordLength = 8

// AccountStore is the persistence surface the user service needs.
type AccountStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	UpdateUserProfile(ctx context.Context, user *model.User) error
	SoftDeleteUser(ctx context.Context, id string) error
	ListActiveSessionIDs(ctx context.Context, userID string) ([]string, error)
	RevokeUserSessions(ctx context.Context, userID string) error
	GetCourseByName(ctx context.Context, name string) (*model.Course, error)
}

// SessionEvictor removes cached session snapshots.
type SessionEvictor interface {
	DeleteSession(ctx context.Context, cacheKey string) error
}

// UserService handles account business logic.
type UserService struct {
	store    AccountStore
	sessions SessionEvictor
}

// NewUserService creates a new UserService.
func NewUserService(store AccountStore, sessions SessionEvictor) *UserService {
	return &UserService{store: store, sessions: sessions}
}

// RegisterInput defines input for creating an account.
// The instructor role is never granted here; accounts start as students
// and are promoted out-of-band.
type RegisterInput struct {
	Username   string
	Password   string
	FirstName  string
	LastName   string
	Email      string
	CourseName string
}

// Register validates the input, hashes the password, and creates the user.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	username := strings.ToLower(strings.TrimSpace(input.Username))
	if !usernameRegex.MatchString(username) {
		return nil, ErrInvalidUsername
	}
	if len(input.Password) < minPasswordLength {
		return nil, ErrInvalidPassword
	}
	if input.Email != "" && !strings.Contains(input.Email, "@") {
		return nil, ErrInvalidEmail
	}

	// Registration requires an existing course to enroll into.
	if _, err := s.store.GetCourseByName(ctx, input.CourseName); err != nil {
		if errors.Is(err, repository.ErrCourseNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("check course: %w", err)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           ulid.Make().String(),
		Username:     username,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		CourseName:   input.CourseName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return nil, ErrUsernameExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UpdateProfileInput defines a partial profile update.
// Nil fields are left unchanged.
type UpdateProfileInput struct {
	ID        string
	FirstName *string
	LastName  *string
	Email     *string
}

// UpdateProfile applies a partial update to a user's profile fields.
func (s *UserService) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*model.User, error) {
	user, err := s.GetUser(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Email != nil {
		if *input.Email != "" && !strings.Contains(*input.Email, "@") {
			return nil, ErrInvalidEmail
		}
		user.Email = *input.Email
	}

	if err := s.store.UpdateUserProfile(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}

	return user, nil
}

// DeleteUser soft-deletes an account, revokes all of its sessions, and
// evicts their cached snapshots so the cache fast path cannot keep
// authorizing a deleted user.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	sessionIDs, err := s.store.ListActiveSessionIDs(ctx, id)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	if err := s.store.SoftDeleteUser(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}

	// Sessions must never outlive their user.
	if err := s.store.RevokeUserSessions(ctx, id); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}

	// Evict after revoking so validation cannot repopulate from a row
	// that is still active.
	for _, sessionID := range sessionIDs {
		if err := s.sessions.DeleteSession(ctx, auth.QuickHash(sessionID)); err != nil {
			return fmt.Errorf("evict session cache: %w", err)
		}
	}

	return nil
}
