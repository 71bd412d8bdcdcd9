package model

import "time"

// Course represents a course that users enroll in and books belong to.
// BaseCourse names the course this one was derived from; a standalone
// course is its own base course.
type Course struct {
	ID            string    `json:"id"`
	CourseName    string    `json:"course_name"`
	BaseCourse    string    `json:"base_course"`
	TermStartDate time.Time `json:"term_start_date"`
	LoginRequired bool      `json:"login_required"`
	CreatedAt     time.Time `json:"created_at"`
}
