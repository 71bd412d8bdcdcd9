package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bookserver/bookserver/internal/model"
)

// Common errors for answer repository operations.
var (
	ErrAnswerNotFound = errors.New("answer not found")
)

// RecordAnswer inserts an answer event row.
func (r *Repository) RecordAnswer(ctx context.Context, answer *model.Answer) error {
	query := `
		INSERT INTO answers (sid, div_id, course_name, event, answer, correct, ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		answer.Sid,
		answer.DivID,
		answer.CourseName,
		answer.Event,
		answer.Answer,
		answer.Correct,
		answer.Timestamp,
	).Scan(&answer.ID)

	if err != nil {
		return fmt.Errorf("failed to record answer: %w", err)
	}

	return nil
}

// GetLastAnswer retrieves the most recent answer for a student and component.
func (r *Repository) GetLastAnswer(ctx context.Context, sid, divID, courseName string) (*model.Answer, error) {
	query := `
		SELECT id, sid, div_id, course_name, event, answer, correct, ts
		FROM answers
		WHERE sid = $1 AND div_id = $2 AND course_name = $3
		ORDER BY ts DESC
		LIMIT 1
	`

	var answer model.Answer
	err := r.pool.QueryRow(ctx, query, sid, divID, courseName).Scan(
		&answer.ID,
		&answer.Sid,
		&answer.DivID,
		&answer.CourseName,
		&answer.Event,
		&answer.Answer,
		&answer.Correct,
		&answer.Timestamp,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAnswerNotFound
		}
		return nil, fmt.Errorf("failed to get last answer: %w", err)
	}

	return &answer, nil
}
