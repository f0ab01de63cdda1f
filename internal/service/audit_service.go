package service

import (
	"context"
	"encoding/json"
	"fmt"

	"reverie-revival/internal/domain"
	"reverie-revival/internal/repository"

	"github.com/google/uuid"
)

// AuditService exposes the audit trail to the admin back-office
type AuditService interface {
	List(ctx context.Context, limit int) ([]domain.AuditLog, error)
}

type auditService struct {
	auditRepo repository.AuditRepository
}

// NewAuditService creates a new instance of AuditService
func NewAuditService(auditRepo repository.AuditRepository) AuditService {
	return &auditService{auditRepo: auditRepo}
}

func (s *auditService) List(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	entries, err := s.auditRepo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return entries, nil
}

// recordAudit appends one entry through repo, which callers bind to their transaction
func recordAudit(ctx context.Context, repo repository.AuditRepository, actor uuid.UUID, action, entityType, entityID string, diff interface{}) error {
	raw, err := json.Marshal(diff)
	if err != nil {
		return fmt.Errorf("failed to encode audit diff: %w", err)
	}

	return repo.Create(ctx, &domain.AuditLog{
		ID:           uuid.New(),
		ActorAdminID: actor,
		Action:       action,
		EntityType:   entityType,
		EntityID:     entityID,
		Diff:         raw,
	})
}
