package domain

import (
	"time"

	"github.com/google/uuid"
)

// StockMovement is an immutable ledger row for a signed change to a variant's stock
type StockMovement struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	VariantID    uuid.UUID  `json:"variantId" db:"variant_id"`
	Delta        int        `json:"delta" db:"delta"`
	Reason       *string    `json:"reason,omitempty" db:"reason"`
	ActorAdminID *uuid.UUID `json:"actorAdminId,omitempty" db:"actor_admin_id"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
}

// StockPolicy decides what happens when a change would drive stock below zero
type StockPolicy int

const (
	// StockPolicyReject fails the change; used by checkout
	StockPolicyReject StockPolicy = iota
	// StockPolicyFloor clamps the resulting stock at zero; used by manual adjustments
	StockPolicyFloor
)

// StockChange is a request to move a variant's stock by Delta
type StockChange struct {
	VariantID    uuid.UUID
	Delta        int
	Reason       string
	ActorAdminID *uuid.UUID
	Policy       StockPolicy
}

// StockChangeResult describes what the ledger actually applied
type StockChangeResult struct {
	VariantID    uuid.UUID
	SKU          string
	PreviousQty  int
	StockQty     int
	AppliedDelta int
	MovementID   uuid.UUID
}

// InventoryRow is a variant listed for the admin inventory screen
type InventoryRow struct {
	VariantID         uuid.UUID `json:"variantId" db:"variant_id"`
	ProductID         uuid.UUID `json:"productId" db:"product_id"`
	ProductTitle      string    `json:"productTitle" db:"product_title"`
	SKU               string    `json:"sku" db:"sku"`
	Size              string    `json:"size" db:"size"`
	Color             string    `json:"color" db:"color"`
	StockQty          int       `json:"stockQty" db:"stock_qty"`
	LowStockThreshold int       `json:"lowStockThreshold" db:"low_stock_threshold"`
	IsActive          bool      `json:"isActive" db:"is_active"`
	UpdatedAt         time.Time `json:"updatedAt" db:"updated_at"`
}

func (r InventoryRow) LowStock() bool {
	return r.StockQty <= r.LowStockThreshold
}
