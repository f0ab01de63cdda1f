package transport

import (
	"errors"
	"net/http"
	"strings"

	"reverie-revival/internal/domain"
	"reverie-revival/internal/middleware"
	"reverie-revival/internal/repository"
	"reverie-revival/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PaymentStatusRequest struct {
	PaymentStatus string `json:"paymentStatus" validate:"required"`
}

type FulfillmentRequest struct {
	FulfillmentStatus string `json:"fulfillmentStatus" validate:"required"`
	TrackingNumber    string `json:"trackingNumber" validate:"max=255"`
	Courier           string `json:"courier" validate:"max=255"`
}

type NotesRequest struct {
	Notes string `json:"notes" validate:"max=5000"`
}

// OrderHandler serves the admin order screens
type OrderHandler struct {
	orders service.OrderService
	logger *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger}
}

// RegisterRoutes registers order routes on an admin router
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.List)
		r.Route("/{orderID}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Patch("/payment", h.UpdatePayment)
			r.Patch("/fulfillment", h.UpdateFulfillment)
			r.Patch("/notes", h.UpdateNotes)
			r.Post("/cancel", h.Cancel)
		})
	})
}

// statusFilter treats "" and "all" as no filter
func statusFilter(value string) string {
	value = strings.ToUpper(strings.TrimSpace(value))
	if value == "ALL" {
		return ""
	}
	return value
}

// List returns orders newest first, filtered by ?payment= and ?fulfillment=
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.OrderFilter{
		PaymentStatus:     domain.PaymentStatus(statusFilter(q.Get("payment"))),
		FulfillmentStatus: domain.FulfillmentStatus(statusFilter(q.Get("fulfillment"))),
		Limit:             limitParam(r),
	}

	orders, err := h.orders.List(r.Context(), filter)
	if err != nil {
		h.respondError(w, err, uuid.Nil)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"orders": orders})
}

// Get returns one order with its items
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, ok := uuidParam(w, r, "orderID")
	if !ok {
		return
	}

	order, err := h.orders.Get(r.Context(), orderID)
	if err != nil {
		h.respondError(w, err, orderID)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// UpdatePayment sets the payment status
func (h *OrderHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	var req PaymentStatusRequest
	h.mutate(w, r, &req, func(adminID, orderID uuid.UUID) (*domain.Order, error) {
		status := domain.PaymentStatus(strings.ToUpper(strings.TrimSpace(req.PaymentStatus)))
		return h.orders.UpdatePaymentStatus(r.Context(), adminID, orderID, status)
	})
}

// UpdateFulfillment sets the fulfillment status with optional tracking details
func (h *OrderHandler) UpdateFulfillment(w http.ResponseWriter, r *http.Request) {
	var req FulfillmentRequest
	h.mutate(w, r, &req, func(adminID, orderID uuid.UUID) (*domain.Order, error) {
		return h.orders.UpdateFulfillment(r.Context(), adminID, orderID, service.FulfillmentUpdate{
			Status:         domain.FulfillmentStatus(strings.ToUpper(strings.TrimSpace(req.FulfillmentStatus))),
			TrackingNumber: req.TrackingNumber,
			Courier:        req.Courier,
		})
	})
}

// UpdateNotes replaces the internal notes
func (h *OrderHandler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	var req NotesRequest
	h.mutate(w, r, &req, func(adminID, orderID uuid.UUID) (*domain.Order, error) {
		return h.orders.UpdateNotes(r.Context(), adminID, orderID, req.Notes)
	})
}

// Cancel moves the order to CANCELLED
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, nil, func(adminID, orderID uuid.UUID) (*domain.Order, error) {
		return h.orders.Cancel(r.Context(), adminID, orderID)
	})
}

// mutate resolves the actor and order id, decodes req when non-nil and runs fn
func (h *OrderHandler) mutate(w http.ResponseWriter, r *http.Request, req interface{}, fn func(adminID, orderID uuid.UUID) (*domain.Order, error)) {
	adminID, ok := actor(w, r)
	if !ok {
		return
	}
	orderID, ok := uuidParam(w, r, "orderID")
	if !ok {
		return
	}

	if req != nil {
		if err := middleware.DecodeAndValidate(r, req); err != nil {
			middleware.RespondWithDecodeError(w, err)
			return
		}
	}

	order, err := fn(adminID, orderID)
	if err != nil {
		h.respondError(w, err, orderID)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) respondError(w http.ResponseWriter, err error, orderID uuid.UUID) {
	switch {
	case errors.Is(err, repository.ErrOrderNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "order not found")
	case errors.Is(err, service.ErrInvalidPaymentStatus):
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid payment status")
	case errors.Is(err, service.ErrInvalidFulfillmentStatus):
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid fulfillment status")
	case errors.Is(err, service.ErrInvalidTransition):
		middleware.RespondWithError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("Order operation failed", zap.Error(err), zap.String("order_id", orderID.String()))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to process order")
	}
}
