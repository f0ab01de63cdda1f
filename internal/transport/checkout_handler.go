package transport

import (
	"errors"
	"net/http"

	"reverie-revival/internal/middleware"
	"reverie-revival/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Storefront checkout messages. The storefront matches on these strings.
const (
	msgInvalidPayload        = "Invalid payload."
	msgItemsUnavailable      = "Some items are no longer available."
	msgOutOfStock            = "Some items are out of stock."
	msgOrderFailed           = "Unable to create order at this time."
	msgDatabaseNotConfigured = "Database is not configured."
)

const maxCheckoutBodyBytes = 256 << 10

// CheckoutResponse is the 200 body of a placed order
type CheckoutResponse struct {
	OK          bool   `json:"ok"`
	OrderID     string `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
}

// CheckoutErrorResponse is the flat error body the storefront expects
type CheckoutErrorResponse struct {
	Error        string   `json:"error"`
	MissingItems []string `json:"missingItems,omitempty"`
	StockIssues  []string `json:"stockIssues,omitempty"`
}

// CheckoutHandler serves POST /api/checkout. A nil service means no database
// is configured.
type CheckoutHandler struct {
	checkout service.CheckoutService
	logger   *zap.Logger
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkout service.CheckoutService, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, logger: logger}
}

// RegisterRoutes registers the checkout route behind the given rate limiter
func (h *CheckoutHandler) RegisterRoutes(r chi.Router, rateLimit func(http.Handler) http.Handler) {
	r.With(rateLimit).Post("/api/checkout", h.PlaceOrder)
}

// PlaceOrder handles a storefront checkout
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	if h.checkout == nil {
		respondCheckoutError(w, http.StatusInternalServerError, CheckoutErrorResponse{Error: msgDatabaseNotConfigured})
		return
	}

	var input service.CheckoutInput
	if err := middleware.DecodeJSONLimit(r, &input, maxCheckoutBodyBytes); err != nil {
		h.logger.Debug("Checkout body could not be decoded", zap.Error(err))
		respondCheckoutError(w, http.StatusBadRequest, CheckoutErrorResponse{Error: msgInvalidPayload})
		return
	}

	result, err := h.checkout.PlaceOrder(r.Context(), input, r.Header.Get("Idempotency-Key"))
	if err != nil {
		status, body := checkoutFailure(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("Checkout failed", zap.Error(err))
		} else {
			h.logger.Debug("Checkout rejected", zap.Error(err))
		}
		respondCheckoutError(w, status, body)
		return
	}

	if result.Replayed {
		h.logger.Info("Checkout replayed", zap.String("order_number", result.OrderNumber))
	}

	middleware.RespondWithJSON(w, http.StatusOK, CheckoutResponse{
		OK:          true,
		OrderID:     result.OrderID.String(),
		OrderNumber: result.OrderNumber,
	})
}

func checkoutFailure(err error) (int, CheckoutErrorResponse) {
	var checkoutErr *service.CheckoutError
	if !errors.As(err, &checkoutErr) {
		return http.StatusInternalServerError, CheckoutErrorResponse{Error: msgOrderFailed}
	}

	switch checkoutErr.Kind {
	case service.KindInvalidPayload:
		return http.StatusBadRequest, CheckoutErrorResponse{Error: msgInvalidPayload}
	case service.KindItemsUnavailable:
		return http.StatusBadRequest, CheckoutErrorResponse{Error: msgItemsUnavailable, MissingItems: checkoutErr.MissingItems}
	case service.KindOutOfStock:
		return http.StatusConflict, CheckoutErrorResponse{Error: msgOutOfStock, StockIssues: checkoutErr.StockIssues}
	default:
		return http.StatusInternalServerError, CheckoutErrorResponse{Error: msgOrderFailed}
	}
}

func respondCheckoutError(w http.ResponseWriter, status int, body CheckoutErrorResponse) {
	middleware.RespondWithJSON(w, status, body)
}
