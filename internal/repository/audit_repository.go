package repository

import (
	"context"
	"fmt"

	"reverie-revival/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// AuditRepository appends and lists admin audit entries
type AuditRepository interface {
	WithTx(tx *sqlx.Tx) AuditRepository
	Create(ctx context.Context, entry *domain.AuditLog) error
	List(ctx context.Context, limit int) ([]domain.AuditLog, error)
}

type auditRepository struct {
	db Querier
}

// NewAuditRepository creates a new instance of AuditRepository
func NewAuditRepository(db Querier) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) WithTx(tx *sqlx.Tx) AuditRepository {
	return &auditRepository{db: tx}
}

// Create inserts one audit entry; an empty diff is stored as {}
func (r *auditRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	diff := string(entry.Diff)
	if diff == "" {
		diff = "{}"
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO audit_logs (id, actor_admin_id, action, entity_type, entity_id, diff)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`,
		entry.ID,
		entry.ActorAdminID,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		diff,
	).Scan(&entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}

	return nil
}

// List returns the newest entries first
func (r *auditRepository) List(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, actor_admin_id, action, entity_type, entity_id, diff, created_at
		FROM audit_logs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	defer rows.Close()

	entries := []domain.AuditLog{}
	for rows.Next() {
		var entry domain.AuditLog
		var diff []byte
		if err := rows.Scan(
			&entry.ID,
			&entry.ActorAdminID,
			&entry.Action,
			&entry.EntityType,
			&entry.EntityID,
			&diff,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		entry.Diff = diff
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit logs: %w", err)
	}

	return entries, nil
}
