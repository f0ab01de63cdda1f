package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"reverie-revival/internal/domain"
	"reverie-revival/internal/repository"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

var ErrZeroAdjustment = errors.New("adjustment delta must not be zero")

// InventoryService serves the admin inventory screens
type InventoryService interface {
	List(ctx context.Context, lowStockOnly bool) ([]domain.InventoryRow, error)
	Adjust(ctx context.Context, actor uuid.UUID, variantID uuid.UUID, delta int, reason string) (*domain.StockChangeResult, error)
	Movements(ctx context.Context, variantID uuid.UUID, limit int) ([]domain.StockMovement, error)
}

type inventoryService struct {
	tx        TxRunner
	ledger    repository.InventoryLedger
	auditRepo repository.AuditRepository
	logger    *zap.Logger
}

// NewInventoryService creates a new instance of InventoryService
func NewInventoryService(tx TxRunner, ledger repository.InventoryLedger, auditRepo repository.AuditRepository, logger *zap.Logger) InventoryService {
	return &inventoryService{tx: tx, ledger: ledger, auditRepo: auditRepo, logger: logger}
}

func (s *inventoryService) List(ctx context.Context, lowStockOnly bool) ([]domain.InventoryRow, error) {
	return s.ledger.ListInventory(ctx, lowStockOnly)
}

// Adjust applies a manual correction floored at zero. The movement carries the
// delta actually applied; the audit entry keeps the requested one.
func (s *inventoryService) Adjust(ctx context.Context, actor uuid.UUID, variantID uuid.UUID, delta int, reason string) (*domain.StockChangeResult, error) {
	if delta == 0 {
		return nil, ErrZeroAdjustment
	}
	reason = strings.TrimSpace(reason)

	var result *domain.StockChangeResult
	err := s.tx.WithinTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		result, err = s.ledger.WithTx(tx).Apply(ctx, domain.StockChange{
			VariantID:    variantID,
			Delta:        delta,
			Reason:       reason,
			ActorAdminID: &actor,
			Policy:       domain.StockPolicyFloor,
		})
		if err != nil {
			return err
		}

		return recordAudit(ctx, s.auditRepo.WithTx(tx), actor,
			domain.AuditInventoryAdjust, domain.AuditEntityVariant, variantID.String(),
			map[string]interface{}{
				"delta":        delta,
				"appliedDelta": result.AppliedDelta,
				"reason":       reason,
				"stockQty":     result.StockQty,
			})
	})
	if err != nil {
		if errors.Is(err, repository.ErrVariantNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to adjust stock: %w", err)
	}

	s.logger.Info("Stock adjusted",
		zap.String("actor_admin_id", actor.String()),
		zap.String("variant_id", variantID.String()),
		zap.Int("delta", delta),
		zap.Int("applied_delta", result.AppliedDelta),
		zap.Int("stock_qty", result.StockQty),
	)

	return result, nil
}

func (s *inventoryService) Movements(ctx context.Context, variantID uuid.UUID, limit int) ([]domain.StockMovement, error) {
	return s.ledger.ListMovements(ctx, variantID, limit)
}
