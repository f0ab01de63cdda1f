package domain

import (
	"time"

	"github.com/google/uuid"
)

// Customer is identified by a unique, lower-cased email
type Customer struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name" db:"name"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	Notes     string    `json:"notes" db:"notes"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// CustomerSummary adds order statistics for the admin customer list
type CustomerSummary struct {
	Customer
	OrderCount    int   `json:"orderCount" db:"order_count"`
	LifetimeTotal int64 `json:"lifetimeTotal" db:"lifetime_total"`
}

// CustomerDetail is a customer with every order they placed, newest first
type CustomerDetail struct {
	Customer
	Orders        []OrderSummary `json:"orders"`
	LifetimeTotal int64          `json:"lifetimeTotal"`
}
