package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"reverie-revival/internal/domain"
)

var (
	ErrSessionNotFound = errors.New("admin session not found")
	ErrSessionRevoked  = errors.New("admin session has been revoked")
)

// AdminSessionRepository stores refresh-token sessions keyed by token hash
type AdminSessionRepository interface {
	Create(ctx context.Context, session *domain.AdminSession) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*domain.AdminSession, error)
	Revoke(ctx context.Context, tokenHash string) error
}

type adminSessionRepository struct {
	db Querier
}

// NewAdminSessionRepository creates a new instance of AdminSessionRepository
func NewAdminSessionRepository(db Querier) AdminSessionRepository {
	return &adminSessionRepository{db: db}
}

// Create inserts a new session
func (r *adminSessionRepository) Create(ctx context.Context, session *domain.AdminSession) error {
	query := `
		INSERT INTO admin_sessions (id, admin_id, token_hash, expires_at, revoked, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		session.ID,
		session.AdminID,
		session.TokenHash,
		session.ExpiresAt,
		session.Revoked,
		session.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create admin session: %w", err)
	}

	return nil
}

// FindByTokenHash retrieves a live session; revoked sessions return ErrSessionRevoked
func (r *adminSessionRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*domain.AdminSession, error) {
	query := `
		SELECT id, admin_id, token_hash, expires_at, revoked, created_at
		FROM admin_sessions
		WHERE token_hash = $1
	`

	session := &domain.AdminSession{}
	err := r.db.QueryRowContext(ctx, query, tokenHash).Scan(
		&session.ID,
		&session.AdminID,
		&session.TokenHash,
		&session.ExpiresAt,
		&session.Revoked,
		&session.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to find admin session: %w", err)
	}

	if session.Revoked {
		return nil, ErrSessionRevoked
	}

	return session, nil
}

// Revoke marks a session as revoked
func (r *adminSessionRepository) Revoke(ctx context.Context, tokenHash string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE admin_sessions SET revoked = TRUE WHERE token_hash = $1`, tokenHash)
	if err != nil {
		return fmt.Errorf("failed to revoke admin session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrSessionNotFound
	}

	return nil
}
