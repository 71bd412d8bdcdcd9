package dto

import (
	"time"

	"github.com/bookserver/bookserver/internal/model"
)

// RegisterRequest represents the request body for creating an account.
// There is no instructor field: the role cannot be claimed at signup
// and is granted out-of-band by course administrators.
type RegisterRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	Email      string `json:"email,omitempty"`
	CourseName string `json:"course_name"`
}

// UpdateProfileRequest represents a partial profile update.
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Email     *string `json:"email,omitempty"`
}

// UserResponse represents a user in API responses.
// The credential hash is never exposed.
type UserResponse struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	Email        string    `json:"email,omitempty"`
	CourseName   string    `json:"course_name"`
	IsInstructor bool      `json:"is_instructor"`
	CreatedAt    time.Time `json:"created_at"`
}

// ToUserResponse converts a User model to UserResponse DTO.
func ToUserResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:           user.ID,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Email:        user.Email,
		CourseName:   user.CourseName,
		IsInstructor: user.IsInstructor,
		CreatedAt:    user.CreatedAt,
	}
}
