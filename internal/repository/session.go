package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/bookserver/bookserver/internal/model"
)

// Common errors for session repository operations.
var (
	ErrSessionNotFound = errors.New("session not found")
)

// CreateSession inserts a new session into the database.
func (r *Repository) CreateSession(ctx context.Context, session *model.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, ip, user_agent, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.IP,
		session.UserAgent,
		session.ExpiresAt,
		session.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// GetSessionByID retrieves a session by its token.
func (r *Repository) GetSessionByID(ctx context.Context, id string) (*model.Session, error) {
	query := `
		SELECT id, user_id, ip, user_agent, revoked_at, expires_at, created_at
		FROM sessions
		WHERE id = $1
	`

	var session model.Session
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&session.ID,
		&session.UserID,
		&session.IP,
		&session.UserAgent,
		&session.RevokedAt,
		&session.ExpiresAt,
		&session.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &session, nil
}

// RevokeSession marks a session as revoked.
// Revoking a missing or already-revoked session is a no-op success,
// which makes logout idempotent.
func (r *Repository) RevokeSession(ctx context.Context, id string) error {
	query := `
		UPDATE sessions
		SET revoked_at = NOW()
		WHERE id = $1 AND revoked_at IS NULL
	`

	if _, err := r.pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	return nil
}

// ListActiveSessionIDs returns the ids of a user's sessions that still
// authorize requests. Used to evict their cache snapshots on account
// deletion.
func (r *Repository) ListActiveSessionIDs(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT id
		FROM sessions
		WHERE user_id = $1 AND revoked_at IS NULL AND expires_at > NOW()
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}

	return ids, nil
}

// RevokeUserSessions revokes every active session belonging to a user.
// Used when an account is deleted or its password changes.
func (r *Repository) RevokeUserSessions(ctx context.Context, userID string) error {
	query := `
		UPDATE sessions
		SET revoked_at = NOW()
		WHERE user_id = $1 AND revoked_at IS NULL
	`

	if _, err := r.pool.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to revoke user sessions: %w", err)
	}

	return nil
}

// PurgeExpiredSessions deletes terminal session rows older than the cutoff.
// Terminal rows carry no authorization weight; this is housekeeping only.
func (r *Repository) PurgeExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	query := `
		DELETE FROM sessions
		WHERE expires_at < $1 OR (revoked_at IS NOT NULL AND revoked_at < $1)
	`

	tag, err := r.pool.Exec(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}

	return tag.RowsAffected(), nil
}
