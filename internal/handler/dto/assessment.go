package dto

import (
	"time"

	"github.com/bookserver/bookserver/internal/model"
)

// AssessmentRequest asks for the last recorded answer to a component.
// Sid is honored only for instructors; for everyone else the server
// substitutes the caller's own username.
type AssessmentRequest struct {
	Sid        string `json:"sid,omitempty"`
	DivID      string `json:"div_id"`
	CourseName string `json:"course_name"`
}

// RecordAnswerRequest represents the request body for recording an answer.
type RecordAnswerRequest struct {
	DivID      string `json:"div_id"`
	CourseName string `json:"course_name"`
	Event      string `json:"event"`
	Answer     string `json:"answer"`
	Correct    *bool  `json:"correct,omitempty"`
}

// AnswerResponse represents a recorded answer in API responses.
type AnswerResponse struct {
	ID         int64     `json:"id"`
	Sid        string    `json:"sid"`
	DivID      string    `json:"div_id"`
	CourseName string    `json:"course_name"`
	Event      string    `json:"event"`
	Answer     string    `json:"answer"`
	Correct    *bool     `json:"correct,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// ToAnswerResponse converts an Answer model to AnswerResponse DTO.
func ToAnswerResponse(answer *model.Answer) *AnswerResponse {
	return &AnswerResponse{
		ID:         answer.ID,
		Sid:        answer.Sid,
		DivID:      answer.DivID,
		CourseName: answer.CourseName,
		Event:      answer.Event,
		Answer:     answer.Answer,
		Correct:    answer.Correct,
		Timestamp:  answer.Timestamp,
	}
}
