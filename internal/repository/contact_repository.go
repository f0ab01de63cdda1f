package repository

import (
	"context"
	"fmt"

	"reverie-revival/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ContactRepository stores storefront contact messages
type ContactRepository interface {
	Create(ctx context.Context, message *domain.ContactMessage) error
	List(ctx context.Context, limit int) ([]domain.ContactMessage, error)
}

type contactRepository struct {
	db Querier
}

// NewContactRepository creates a new instance of ContactRepository
func NewContactRepository(db Querier) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(ctx context.Context, message *domain.ContactMessage) error {
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO contact_messages (id, name, email, phone, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`,
		message.ID,
		message.Name,
		message.Email,
		nullableString(message.Phone),
		message.Message,
	).Scan(&message.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create contact message: %w", err)
	}

	return nil
}

// List returns the newest messages first
func (r *contactRepository) List(ctx context.Context, limit int) ([]domain.ContactMessage, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	messages := []domain.ContactMessage{}
	err := sqlx.SelectContext(ctx, r.db, &messages, `
		SELECT id, name, email, phone, message, created_at
		FROM contact_messages
		ORDER BY created_at DESC, id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list contact messages: %w", err)
	}

	return messages, nil
}
