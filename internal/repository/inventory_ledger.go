package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"reverie-revival/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrVariantNotFound   = errors.New("variant not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// InventoryLedger is the only writer of variants.stock_qty. Every change it
// applies inserts exactly one stock_movements row in the same statement.
type InventoryLedger interface {
	WithTx(tx *sqlx.Tx) InventoryLedger
	Apply(ctx context.Context, change domain.StockChange) (*domain.StockChangeResult, error)
	ListMovements(ctx context.Context, variantID uuid.UUID, limit int) ([]domain.StockMovement, error)
	ListInventory(ctx context.Context, lowStockOnly bool) ([]domain.InventoryRow, error)
}

type inventoryLedger struct {
	db Querier
}

// NewInventoryLedger creates a new instance of InventoryLedger
func NewInventoryLedger(db Querier) InventoryLedger {
	return &inventoryLedger{db: db}
}

func (l *inventoryLedger) WithTx(tx *sqlx.Tx) InventoryLedger {
	return &inventoryLedger{db: tx}
}

// The guarded form only touches the row when the result stays non-negative, so
// two concurrent decrements of the last units cannot both succeed.
const guardedStockChangeQuery = `
	WITH updated AS (
		UPDATE variants
		SET stock_qty = stock_qty + $2
		WHERE id = $1 AND stock_qty + $2 >= 0
		RETURNING id, sku, stock_qty
	), movement AS (
		INSERT INTO stock_movements (id, variant_id, delta, reason, actor_admin_id, created_at)
		SELECT $3::uuid, id, $2, $4::text, $5::uuid, NOW() FROM updated
		RETURNING id
	)
	SELECT updated.sku, updated.stock_qty - $2, updated.stock_qty, $2::int, movement.id
	FROM updated, movement
`

// The floored form locks the row, clamps at zero and records the delta that was
// actually applied so the ledger keeps summing to the balance.
const flooredStockChangeQuery = `
	WITH prev AS (
		SELECT id, stock_qty FROM variants WHERE id = $1 FOR UPDATE
	), updated AS (
		UPDATE variants v
		SET stock_qty = GREATEST(0, prev.stock_qty + $2)
		FROM prev
		WHERE v.id = prev.id
		RETURNING v.id, v.sku, prev.stock_qty AS previous_qty, v.stock_qty
	), movement AS (
		INSERT INTO stock_movements (id, variant_id, delta, reason, actor_admin_id, created_at)
		SELECT $3::uuid, id, stock_qty - previous_qty, $4::text, $5::uuid, NOW() FROM updated
		RETURNING id
	)
	SELECT updated.sku, updated.previous_qty, updated.stock_qty, updated.stock_qty - updated.previous_qty, movement.id
	FROM updated, movement
`

// Apply moves the variant's stock by change.Delta and appends the movement row
func (l *inventoryLedger) Apply(ctx context.Context, change domain.StockChange) (*domain.StockChangeResult, error) {
	query := guardedStockChangeQuery
	if change.Policy == domain.StockPolicyFloor {
		query = flooredStockChangeQuery
	}

	var reason sql.NullString
	if change.Reason != "" {
		reason = sql.NullString{String: change.Reason, Valid: true}
	}

	var actor interface{}
	if change.ActorAdminID != nil {
		actor = *change.ActorAdminID
	}

	result := &domain.StockChangeResult{VariantID: change.VariantID}
	err := l.db.QueryRowContext(ctx, query,
		change.VariantID,
		change.Delta,
		uuid.New(),
		reason,
		actor,
	).Scan(
		&result.SKU,
		&result.PreviousQty,
		&result.StockQty,
		&result.AppliedDelta,
		&result.MovementID,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if change.Policy == domain.StockPolicyFloor {
				return nil, ErrVariantNotFound
			}
			return nil, ErrInsufficientStock
		}
		return nil, fmt.Errorf("failed to apply stock change: %w", err)
	}

	return result, nil
}

// ListMovements returns the newest ledger rows of a variant
func (l *inventoryLedger) ListMovements(ctx context.Context, variantID uuid.UUID, limit int) ([]domain.StockMovement, error) {
	if limit <= 0 {
		limit = 100
	}

	movements := []domain.StockMovement{}
	err := sqlx.SelectContext(ctx, l.db, &movements, `
		SELECT id, variant_id, delta, reason, actor_admin_id, created_at
		FROM stock_movements
		WHERE variant_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2
	`, variantID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock movements: %w", err)
	}

	return movements, nil
}

// ListInventory lists every variant with its product title, most recently changed first
func (l *inventoryLedger) ListInventory(ctx context.Context, lowStockOnly bool) ([]domain.InventoryRow, error) {
	query := `
		SELECT v.id AS variant_id, v.product_id, p.title AS product_title, v.sku, v.size, v.color,
		       v.stock_qty, v.low_stock_threshold, v.is_active, v.updated_at
		FROM variants v
		JOIN products p ON p.id = v.product_id
	`
	if lowStockOnly {
		query += ` WHERE v.stock_qty <= v.low_stock_threshold`
	}
	query += ` ORDER BY v.updated_at DESC, v.sku`

	rows := []domain.InventoryRow{}
	if err := sqlx.SelectContext(ctx, l.db, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}

	return rows, nil
}
