package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"reverie-revival/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrAdminNotFound      = errors.New("admin user not found")
	ErrAdminAlreadyExists = errors.New("admin user with this email already exists")
)

// AdminRepository defines the interface for admin user data access
type AdminRepository interface {
	Create(ctx context.Context, admin *domain.AdminUser) error
	FindByEmail(ctx context.Context, email string) (*domain.AdminUser, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.AdminUser, error)
}

type adminRepository struct {
	db Querier
}

// NewAdminRepository creates a new instance of AdminRepository
func NewAdminRepository(db Querier) AdminRepository {
	return &adminRepository{db: db}
}

// Create inserts a new admin user using parameterized queries
func (r *adminRepository) Create(ctx context.Context, admin *domain.AdminUser) error {
	query := `
		INSERT INTO admin_users (id, email, password_hash, name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		admin.ID,
		admin.Email,
		admin.PasswordHash,
		admin.Name,
		admin.Role,
		admin.CreatedAt,
		admin.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err, "admin_users_email_key") {
			return ErrAdminAlreadyExists
		}
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	return nil
}

// FindByEmail retrieves an admin user by email
func (r *adminRepository) FindByEmail(ctx context.Context, email string) (*domain.AdminUser, error) {
	return r.findOne(ctx, "email", email)
}

// FindByID retrieves an admin user by ID
func (r *adminRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.AdminUser, error) {
	return r.findOne(ctx, "id", id)
}

func (r *adminRepository) findOne(ctx context.Context, column string, value interface{}) (*domain.AdminUser, error) {
	query := `
		SELECT id, email, password_hash, name, role, created_at, updated_at
		FROM admin_users
		WHERE ` + column + ` = $1
	`

	admin := &domain.AdminUser{}
	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&admin.ID,
		&admin.Email,
		&admin.PasswordHash,
		&admin.Name,
		&admin.Role,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("failed to find admin user by %s: %w", column, err)
	}

	return admin, nil
}
