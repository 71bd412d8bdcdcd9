package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/bookserver/bookserver/internal/auth"
	"github.com/bookserver/bookserver/internal/handler/dto"
	"github.com/bookserver/bookserver/internal/model"
	"github.com/bookserver/bookserver/internal/repository"
)

// AnswerLog is the assessment storage surface the handlers need.
type AnswerLog interface {
	RecordAnswer(ctx context.Context, answer *model.Answer) error
	GetLastAnswer(ctx context.Context, sid, divID, courseName string) (*model.Answer, error)
}

// AssessmentHandler handles assessment result endpoints.
type AssessmentHandler struct {
	answers AnswerLog
	logger  *slog.Logger
}

// NewAssessmentHandler creates a new AssessmentHandler.
func NewAssessmentHandler(answers AnswerLog, logger *slog.Logger) *AssessmentHandler {
	return &AssessmentHandler{answers: answers, logger: logger}
}

// Results returns the most recent answer a student gave for a component.
// Only instructors may query another student's sid; everyone else gets
// their own results regardless of what the request asked for. A missing
// row is not an error, the response is an empty object.
// POST /api/v1/assessment/results
func (h *AssessmentHandler) Results(w http.ResponseWriter, r *http.Request) {
	var req dto.AssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}
	if req.DivID == "" || req.CourseName == "" {
		writeError(w, http.StatusUnprocessableEntity, "MISSING_FIELDS", "div_id and course_name are required")
		return
	}

	sid := req.Sid
	if sid == "" || !auth.IsInstructor(r.Context()) {
		sid = auth.UsernameFromContext(r.Context())
	}

	answer, err := h.answers.GetLastAnswer(r.Context(), sid, req.DivID, req.CourseName)
	if err != nil {
		if errors.Is(err, repository.ErrAnswerNotFound) {
			writeJSON(w, http.StatusOK, struct{}{})
			return
		}
		h.logger.Error("fetch assessment result", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToAnswerResponse(answer))
}

// Record stores an answer event for the authenticated user.
// POST /api/v1/assessment/answers
func (h *AssessmentHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}
	if req.DivID == "" || req.CourseName == "" || req.Event == "" {
		writeError(w, http.StatusUnprocessableEntity, "MISSING_FIELDS", "div_id, course_name, and event are required")
		return
	}

	answer := &model.Answer{
		Sid:        auth.UsernameFromContext(r.Context()),
		DivID:      req.DivID,
		CourseName: req.CourseName,
		Event:      req.Event,
		Answer:     req.Answer,
		Correct:    req.Correct,
		Timestamp:  time.Now().UTC(),
	}

	if err := h.answers.RecordAnswer(r.Context(), answer); err != nil {
		h.logger.Error("record answer", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToAnswerResponse(answer))
}
