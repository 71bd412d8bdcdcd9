package dto

import (
	"time"

	"github.com/bookserver/bookserver/internal/model"
)

// LoginRequest represents the JSON request body for a login.
// The browser form posts the same fields as loginuser/loginpw.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse represents a successful login.
type LoginResponse struct {
	SessionID string        `json:"session_id"`
	ExpiresAt time.Time     `json:"expires_at"`
	User      *UserResponse `json:"user"`
}

// ToLoginResponse converts a session and its user to a LoginResponse DTO.
func ToLoginResponse(sess *model.Session, user *model.User) *LoginResponse {
	return &LoginResponse{
		SessionID: sess.ID,
		ExpiresAt: sess.ExpiresAt,
		User:      ToUserResponse(user),
	}
}
