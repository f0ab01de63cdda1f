package transport

import (
	"errors"
	"net/http"

	"reverie-revival/internal/domain"
	"reverie-revival/internal/middleware"
	"reverie-revival/internal/repository"
	"reverie-revival/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AdjustStockRequest is a manual stock correction
type AdjustStockRequest struct {
	Delta  int    `json:"delta" validate:"ne=0,gte=-1000000,lte=1000000"`
	Reason string `json:"reason" validate:"max=500"`
}

// InventoryItem is an inventory row with its low stock flag
type InventoryItem struct {
	domain.InventoryRow
	LowStock bool `json:"lowStock"`
}

// AdjustStockResponse reports the stock after an adjustment
type AdjustStockResponse struct {
	VariantID    string `json:"variantId"`
	SKU          string `json:"sku"`
	StockQty     int    `json:"stockQty"`
	AppliedDelta int    `json:"appliedDelta"`
}

// InventoryHandler serves the admin inventory screens
type InventoryHandler struct {
	inventory service.InventoryService
	logger    *zap.Logger
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(inventory service.InventoryService, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{inventory: inventory, logger: logger}
}

// RegisterRoutes registers inventory routes on an admin router
func (h *InventoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/inventory", h.List)
	r.Post("/inventory/{variantID}/adjust", h.Adjust)
	r.Get("/inventory/{variantID}/movements", h.Movements)
}

// List returns variants; ?lowStock=true keeps those at or below their threshold
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.inventory.List(r.Context(), r.URL.Query().Get("lowStock") == "true")
	if err != nil {
		h.logger.Error("Failed to list inventory", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list inventory")
		return
	}

	items := make([]InventoryItem, len(rows))
	for i, row := range rows {
		items[i] = InventoryItem{InventoryRow: row, LowStock: row.LowStock()}
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

// Adjust applies a manual stock correction floored at zero
func (h *InventoryHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	adminID, ok := actor(w, r)
	if !ok {
		return
	}
	variantID, ok := uuidParam(w, r, "variantID")
	if !ok {
		return
	}

	var req AdjustStockRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	result, err := h.inventory.Adjust(r.Context(), adminID, variantID, req.Delta, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrZeroAdjustment):
			middleware.RespondWithError(w, http.StatusBadRequest, "delta must not be zero")
		case errors.Is(err, repository.ErrVariantNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "variant not found")
		default:
			h.logger.Error("Stock adjustment failed", zap.Error(err), zap.String("variant_id", variantID.String()))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to adjust stock")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, AdjustStockResponse{
		VariantID:    result.VariantID.String(),
		SKU:          result.SKU,
		StockQty:     result.StockQty,
		AppliedDelta: result.AppliedDelta,
	})
}

// Movements returns the variant's ledger, newest first
func (h *InventoryHandler) Movements(w http.ResponseWriter, r *http.Request) {
	variantID, ok := uuidParam(w, r, "variantID")
	if !ok {
		return
	}

	movements, err := h.inventory.Movements(r.Context(), variantID, limitParam(r))
	if err != nil {
		h.logger.Error("Failed to list stock movements", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list movements")
		return
	}
	if movements == nil {
		movements = []domain.StockMovement{}
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"movements": movements})
}
