package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bookserver/bookserver/internal/auth"
	"github.com/bookserver/bookserver/internal/handler/dto"
	"github.com/bookserver/bookserver/internal/model"
	"github.com/bookserver/bookserver/internal/service"
)

// AccountManager is the account surface the user handlers need.
type AccountManager interface {
	Register(ctx context.Context, input service.RegisterInput) (*model.User, error)
	UpdateProfile(ctx context.Context, input service.UpdateProfileInput) (*model.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// UserHandler handles account endpoints.
type UserHandler struct {
	users  AccountManager
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users AccountManager, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// Register creates a new account. Accounts are always created as
// students; unknown body fields are ignored.
// POST /api/v1/users
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}

	user, err := h.users.Register(r.Context(), service.RegisterInput{
		Username:   req.Username,
		Password:   req.Password,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		CourseName: req.CourseName,
	})
	if err != nil {
		h.handleUserError(w, err)
		return
	}

	h.logger.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
		slog.String("course_name", user.CourseName),
	)

	writeJSON(w, http.StatusCreated, dto.ToUserResponse(user))
}

// UpdateMe applies a partial update to the authenticated user's profile.
// PATCH /api/v1/users/me
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	p := auth.MustPrincipalFromContext(r.Context())

	var req dto.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), service.UpdateProfileInput{
		ID:        p.User.ID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		h.handleUserError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// DeleteMe soft-deletes the authenticated user's account and ends all
// of its sessions.
// DELETE /api/v1/users/me
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	p := auth.MustPrincipalFromContext(r.Context())

	if err := h.users.DeleteUser(r.Context(), p.User.ID); err != nil {
		h.handleUserError(w, err)
		return
	}

	h.logger.Info("user deleted",
		slog.String("user_id", p.User.ID),
		slog.String("username", p.User.Username),
	)

	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) handleUserError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidUsername):
		writeError(w, http.StatusUnprocessableEntity, "INVALID_USERNAME", "Username must be 3-64 characters of lowercase letters, digits, dot, underscore, or hyphen")
	case errors.Is(err, service.ErrInvalidPassword):
		writeError(w, http.StatusUnprocessableEntity, "INVALID_PASSWORD", "Password must be at least 8 characters")
	case errors.Is(err, service.ErrInvalidEmail):
		writeError(w, http.StatusUnprocessableEntity, "INVALID_EMAIL", "Invalid email address")
	case errors.Is(err, service.ErrUsernameExists):
		writeError(w, http.StatusConflict, "USERNAME_EXISTS", "Username is already taken")
	case errors.Is(err, service.ErrCourseNotFound):
		writeError(w, http.StatusUnprocessableEntity, "COURSE_NOT_FOUND", "Course does not exist")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	default:
		h.logger.Error("user handler error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
