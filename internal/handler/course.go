package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bookserver/bookserver/internal/handler/dto"
	"github.com/bookserver/bookserver/internal/model"
	"github.com/bookserver/bookserver/internal/service"
)

// CourseDirectory is the course surface the course handlers need.
type CourseDirectory interface {
	CreateCourse(ctx context.Context, input service.CreateCourseInput) (*model.Course, error)
	GetCourse(ctx context.Context, name string) (*model.Course, error)
	ListCourses(ctx context.Context) ([]*model.Course, error)
}

// CourseHandler handles course endpoints.
type CourseHandler struct {
	courses CourseDirectory
	logger  *slog.Logger
}

// NewCourseHandler creates a new CourseHandler.
func NewCourseHandler(courses CourseDirectory, logger *slog.Logger) *CourseHandler {
	return &CourseHandler{courses: courses, logger: logger}
}

// Create adds a new course.
// POST /api/v1/courses
func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}

	var termStart time.Time
	if req.TermStartDate != nil {
		termStart = *req.TermStartDate
	}

	course, err := h.courses.CreateCourse(r.Context(), service.CreateCourseInput{
		CourseName:    req.CourseName,
		BaseCourse:    req.BaseCourse,
		TermStartDate: termStart,
		LoginRequired: req.LoginRequired,
	})
	if err != nil {
		h.handleCourseError(w, err)
		return
	}

	h.logger.Info("course created", slog.String("course_name", course.CourseName))

	writeJSON(w, http.StatusCreated, dto.ToCourseResponse(course))
}

// Get returns a single course by name.
// GET /api/v1/courses/{name}
func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	course, err := h.courses.GetCourse(r.Context(), name)
	if err != nil {
		h.handleCourseError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToCourseResponse(course))
}

// List returns all courses.
// GET /api/v1/courses
func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	courses, err := h.courses.ListCourses(r.Context())
	if err != nil {
		h.handleCourseError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToCourseListResponse(courses))
}

func (h *CourseHandler) handleCourseError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		writeError(w, http.StatusNotFound, "COURSE_NOT_FOUND", "Course not found")
	case errors.Is(err, service.ErrCourseExists):
		writeError(w, http.StatusConflict, "COURSE_EXISTS", "Course already exists")
	case errors.Is(err, service.ErrInvalidCourseName):
		writeError(w, http.StatusUnprocessableEntity, "INVALID_COURSE_NAME", "Course name must be 3-64 characters of letters, digits, underscore, or hyphen")
	default:
		h.logger.Error("course handler error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
