package model

import "time"

// Answer is one recorded attempt at an assessment component.
// Sid is the username of the student who answered, DivID identifies the
// component on the page. The most recent row per (sid, div_id, course)
// is what grading and result lookups care about.
type Answer struct {
	ID         int64     `json:"id"`
	Sid        string    `json:"sid"`
	DivID      string    `json:"div_id"`
	CourseName string    `json:"course_name"`
	Event      string    `json:"event"`
	Answer     string    `json:"answer"`
	Correct    *bool     `json:"correct,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
