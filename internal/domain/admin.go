package domain

import (
	"time"

	"github.com/google/uuid"
)

const RoleAdmin = "admin"

// AdminUser is a back-office operator
type AdminUser struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Name         string    `json:"name" db:"name"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// AdminSession backs a refresh token; only the token's SHA-256 hash is stored
type AdminSession struct {
	ID        uuid.UUID `db:"id"`
	AdminID   uuid.UUID `db:"admin_id"`
	TokenHash string    `db:"token_hash"`
	ExpiresAt time.Time `db:"expires_at"`
	Revoked   bool      `db:"revoked"`
	CreatedAt time.Time `db:"created_at"`
}
