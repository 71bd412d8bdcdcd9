package dto

import (
	"time"

	"github.com/bookserver/bookserver/internal/model"
)

// CreateCourseRequest represents the request body for creating a course.
type CreateCourseRequest struct {
	CourseName    string     `json:"course_name"`
	BaseCourse    string     `json:"base_course,omitempty"`
	TermStartDate *time.Time `json:"term_start_date,omitempty"`
	LoginRequired bool       `json:"login_required"`
}

// CourseResponse represents a course in API responses.
type CourseResponse struct {
	ID            string    `json:"id"`
	CourseName    string    `json:"course_name"`
	BaseCourse    string    `json:"base_course"`
	TermStartDate time.Time `json:"term_start_date"`
	LoginRequired bool      `json:"login_required"`
	CreatedAt     time.Time `json:"created_at"`
}

// CourseListResponse represents a list of courses.
type CourseListResponse struct {
	Data []CourseResponse `json:"data"`
}

// ToCourseResponse converts a Course model to CourseResponse DTO.
func ToCourseResponse(course *model.Course) *CourseResponse {
	return &CourseResponse{
		ID:            course.ID,
		CourseName:    course.CourseName,
		BaseCourse:    course.BaseCourse,
		TermStartDate: course.TermStartDate,
		LoginRequired: course.LoginRequired,
		CreatedAt:     course.CreatedAt,
	}
}

// ToCourseListResponse converts a slice of Course models to CourseListResponse.
func ToCourseListResponse(courses []*model.Course) *CourseListResponse {
	responses := make([]CourseResponse, len(courses))
	for i, course := range courses {
		responses[i] = *ToCourseResponse(course)
	}
	return &CourseListResponse{Data: responses}
}
