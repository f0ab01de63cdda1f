package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Audit actions recorded by admin commands
const (
	AuditInventoryAdjust  = "inventory.adjust"
	AuditOrderPayment     = "order.payment.update"
	AuditOrderFulfillment = "order.fulfillment.update"
	AuditOrderNotes       = "order.notes.update"
	AuditOrderCancel      = "order.cancel"
	AuditSettingsUpdate   = "settings.update"
	AuditCustomerNotes    = "customer.notes.update"
	AuditEntityVariant    = "variant"
	AuditEntityOrder      = "order"
	AuditEntitySettings   = "settings"
	AuditEntityCustomer   = "customer"
)

type AuditLog struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	ActorAdminID uuid.UUID       `json:"actorAdminId" db:"actor_admin_id"`
	Action       string          `json:"action" db:"action"`
	EntityType   string          `json:"entityType" db:"entity_type"`
	EntityID     string          `json:"entityId" db:"entity_id"`
	Diff         json.RawMessage `json:"diff" db:"-"`
	CreatedAt    time.Time       `json:"createdAt" db:"created_at"`
}
