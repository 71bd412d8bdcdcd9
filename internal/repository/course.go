package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bookserver/bookserver/internal/model"
)

// Common errors for course repository operations.
var (
	ErrCourseNotFound = errors.New("course not found")
	ErrCourseExists   = errors.New("course already exists")
)

// CreateCourse inserts a new course into the database.
func (r *Repository) CreateCourse(ctx context.Context, course *model.Course) error {
	query := `
		INSERT INTO courses (id, course_name, base_course, term_start_date, login_required, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		course.ID,
		course.CourseName,
		course.BaseCourse,
		course.TermStartDate,
		course.LoginRequired,
		course.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrCourseExists
		}
		return fmt.Errorf("failed to create course: %w", err)
	}

	return nil
}

// GetCourseByName retrieves a course by its unique name.
func (r *Repository) GetCourseByName(ctx context.Context, name string) (*model.Course, error) {
	query := `
		SELECT id, course_name, base_course, term_start_date, login_required, created_at
		FROM courses
		WHERE course_name = $1
	`

	var course model.Course
	err := r.pool.QueryRow(ctx, query, name).Scan(
		&course.ID,
		&course.CourseName,
		&course.BaseCourse,
		&course.TermStartDate,
		&course.LoginRequired,
		&course.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course by name: %w", err)
	}

	return &course, nil
}

// ListCourses retrieves all courses ordered by name.
func (r *Repository) ListCourses(ctx context.Context) ([]*model.Course, error) {
	query := `
		SELECT id, course_name, base_course, term_start_date, login_required, created_at
		FROM courses
		ORDER BY course_name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	defer rows.Close()

	var courses []*model.Course
	for rows.Next() {
		var course model.Course
		if err := rows.Scan(
			&course.ID,
			&course.CourseName,
			&course.BaseCourse,
			&course.TermStartDate,
			&course.LoginRequired,
			&course.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, &course)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating courses: %w", err)
	}

	return courses, nil
}
