package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"reverie-revival/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrCustomerNotFound = errors.New("customer not found")

const customerColumns = `c.id, c.email, c.name, c.phone, c.notes, c.created_at, c.updated_at`

// CustomerRepository defines the interface for customer data access
type CustomerRepository interface {
	WithTx(tx *sqlx.Tx) CustomerRepository
	UpsertByEmail(ctx context.Context, customer *domain.Customer) (uuid.UUID, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	UpdateNotes(ctx context.Context, id uuid.UUID, notes string) (*domain.Customer, error)
	List(ctx context.Context, limit int) ([]domain.CustomerSummary, error)
}

type customerRepository struct {
	db Querier
}

// NewCustomerRepository creates a new instance of CustomerRepository
func NewCustomerRepository(db Querier) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) WithTx(tx *sqlx.Tx) CustomerRepository {
	return &customerRepository{db: tx}
}

// UpsertByEmail creates the customer unless one with the same email exists,
// in which case the existing row is reused unchanged. It returns the stored id.
func (r *customerRepository) UpsertByEmail(ctx context.Context, customer *domain.Customer) (uuid.UUID, error) {
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	now := time.Now()

	query := `
		INSERT INTO customers (id, email, name, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (email) DO UPDATE
		SET email = EXCLUDED.email
		RETURNING id
	`

	var id uuid.UUID
	err := r.db.QueryRowContext(
		ctx,
		query,
		customer.ID,
		customer.Email,
		customer.Name,
		nullableString(customer.Phone),
		now,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to upsert customer: %w", err)
	}

	customer.ID = id
	return id, nil
}

// FindByID retrieves a customer by ID
func (r *customerRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	var customer domain.Customer
	err := sqlx.GetContext(ctx, r.db, &customer, `SELECT `+customerColumns+` FROM customers c WHERE c.id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	return &customer, nil
}

// UpdateNotes replaces the internal notes and returns the updated customer
func (r *customerRepository) UpdateNotes(ctx context.Context, id uuid.UUID, notes string) (*domain.Customer, error) {
	var customer domain.Customer
	err := sqlx.GetContext(ctx, r.db, &customer, `
		UPDATE customers c SET notes = $2
		WHERE c.id = $1
		RETURNING `+customerColumns, id, notes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to update customer notes: %w", err)
	}
	return &customer, nil
}

// List returns customers with their order count and lifetime spend, newest first
func (r *customerRepository) List(ctx context.Context, limit int) ([]domain.CustomerSummary, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	customers := []domain.CustomerSummary{}
	err := sqlx.SelectContext(ctx, r.db, &customers, `
		SELECT `+customerColumns+`,
		       COUNT(o.id) AS order_count,
		       COALESCE(SUM(o.total), 0) AS lifetime_total
		FROM customers c
		LEFT JOIN orders o ON o.customer_id = c.id
		GROUP BY c.id
		ORDER BY c.created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	return customers, nil
}
