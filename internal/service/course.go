package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/bookserver/bookserver/internal/model"
	"github.com/bookserver/bookserver/internal/repository"
)

// Course service errors.
var (
	ErrCourseExists      = errors.New("course already exists")
	ErrInvalidCourseName = errors.New("invalid course name")
)

// Course name: 3-64 chars, alphanumeric plus underscore and hyphen.
var courseNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,64}$`)

// CourseService handles course business logic.
type CourseService struct {
	repo *repository.Repository
}

// NewCourseService creates a new CourseService.
func NewCourseService(repo *repository.Repository) *CourseService {
	return &CourseService{repo: repo}
}

// CreateCourseInput defines input for creating a course.
type CreateCourseInput struct {
	CourseName    string
	BaseCourse    string
	TermStartDate time.Time
	LoginRequired bool
}

// CreateCourse validates the input and inserts a new course.
// An empty base course means the course is its own base.
func (s *CourseService) CreateCourse(ctx context.Context, input CreateCourseInput) (*model.Course, error) {
	if !courseNameRegex.MatchString(input.CourseName) {
		return nil, ErrInvalidCourseName
	}

	base := input.BaseCourse
	if base == "" {
		base = input.CourseName
	} else if !courseNameRegex.MatchString(base) {
		return nil, ErrInvalidCourseName
	}

	termStart := input.TermStartDate
	if termStart.IsZero() {
		termStart = time.Now()
	}

	course := &model.Course{
		ID:            ulid.Make().String(),
		CourseName:    input.CourseName,
		BaseCourse:    base,
		TermStartDate: termStart,
		LoginRequired: input.LoginRequired,
		CreatedAt:     time.Now(),
	}

	if err := s.repo.CreateCourse(ctx, course); err != nil {
		if errors.Is(err, repository.ErrCourseExists) {
			return nil, ErrCourseExists
		}
		return nil, fmt.Errorf("create course: %w", err)
	}

	return course, nil
}

// GetCourse retrieves a course by name.
func (s *CourseService) GetCourse(ctx context.Context, name string) (*model.Course, error) {
	course, err := s.repo.GetCourseByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrCourseNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("get course: %w", err)
	}
	return course, nil
}

// ListCourses retrieves all courses.
func (s *CourseService) ListCourses(ctx context.Context) ([]*model.Course, error) {
	courses, err := s.repo.ListCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}
