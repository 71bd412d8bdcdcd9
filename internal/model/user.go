// Package model defines domain entities for the application.
package model

import "time"

// User represents a registered account.
// PasswordHash holds an Argon2id PHC string and is never serialized.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Email        string     `json:"email"`
	CourseName   string     `json:"course_name"`
	IsInstructor bool       `json:"is_instructor"`
	DeletedAt    *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsActive returns true if the account has not been soft-deleted.
func (u *User) IsActive() bool {
	return u.DeletedAt == nil
}
