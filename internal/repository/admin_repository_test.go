package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"reverie-revival/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestProperty_AdminPasswordsAreHashed(t *testing.T) {
	resetDB(t)
	repo := NewAdminRepository(testDB)
	ctx := context.Background()

	properties := gopter.NewProperties(nil)
	properties.Property("passwords are hashed with bcrypt and not stored as plaintext", prop.ForAll(
		func(email string, password string, name string) bool {
			_, _ = testDB.Exec("DELETE FROM admin_users WHERE email = $1", email)

			hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
			if err != nil {
				t.Logf("Failed to hash password: %v", err)
				return false
			}

			admin := &domain.AdminUser{
				ID:           uuid.New(),
				Email:        email,
				PasswordHash: string(hashedPassword),
				Name:         name,
				Role:         domain.RoleAdmin,
				CreatedAt:    time.Now(),
				UpdatedAt:    time.Now(),
			}
			if err := repo.Create(ctx, admin); err != nil {
				t.Logf("Failed to create admin: %v", err)
				return false
			}

			retrieved, err := repo.FindByEmail(ctx, email)
			if err != nil {
				t.Logf("Failed to find admin: %v", err)
				return false
			}

			if retrieved.PasswordHash == password {
				t.Logf("Password was stored as plaintext!")
				return false
			}

			if err := bcrypt.CompareHashAndPassword([]byte(retrieved.PasswordHash), []byte(password)); err != nil {
				t.Logf("Stored password is not a valid bcrypt hash: %v", err)
				return false
			}

			return true
		},
		gen.RegexMatch(`[a-z]{5,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
		gen.RegexMatch(`[A-Z][a-z]{2,15}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestAdminRepository_DuplicateEmail(t *testing.T) {
	resetDB(t)
	ctx := context.Background()
	admin := seedAdmin(t)

	dup := *admin
	dup.ID = uuid.New()
	assert.ErrorIs(t, NewAdminRepository(testDB).Create(ctx, &dup), ErrAdminAlreadyExists)

	found, err := NewAdminRepository(testDB).FindByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, admin.Email, found.Email)

	_, err = NewAdminRepository(testDB).FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrAdminNotFound)
}

func TestAdminSessionRepository_Lifecycle(t *testing.T) {
	resetDB(t)
	ctx := context.Background()
	repo := NewAdminSessionRepository(testDB)
	admin := seedAdmin(t)

	sum := sha256.Sum256([]byte("refresh-token"))
	hash := hex.EncodeToString(sum[:])
	session := &domain.AdminSession{
		ID:        uuid.New(),
		AdminID:   admin.ID,
		TokenHash: hash,
		ExpiresAt: time.Now().Add(7 * 24 * time.Hour),
		CreatedAt: time.Now(),
	}
	require.NoError(t, repo.Create(ctx, session))

	found, err := repo.FindByTokenHash(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, found.AdminID)

	require.NoError(t, repo.Revoke(ctx, hash))
	_, err = repo.FindByTokenHash(ctx, hash)
	assert.ErrorIs(t, err, ErrSessionRevoked)

	assert.ErrorIs(t, repo.Revoke(ctx, "missing"), ErrSessionNotFound)
}
