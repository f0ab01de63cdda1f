package transport

import (
	"errors"
	"net/http"

	"reverie-revival/internal/middleware"
	"reverie-revival/internal/repository"
	"reverie-revival/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// StoreAdminHandler serves customers, settings and the audit trail
type StoreAdminHandler struct {
	customers service.CustomerService
	settings  service.SettingsService
	audit     service.AuditService
	logger    *zap.Logger
}

// NewStoreAdminHandler creates a new StoreAdminHandler
func NewStoreAdminHandler(customers service.CustomerService, settings service.SettingsService, audit service.AuditService, logger *zap.Logger) *StoreAdminHandler {
	return &StoreAdminHandler{customers: customers, settings: settings, audit: audit, logger: logger}
}

// RegisterRoutes registers the routes on an admin router
func (h *StoreAdminHandler) RegisterRoutes(r chi.Router) {
	r.Get("/customers", h.Customers)
	r.Get("/customers/{customerID}", h.Customer)
	r.Patch("/customers/{customerID}/notes", h.UpdateCustomerNotes)
	r.Get("/settings", h.GetSettings)
	r.Put("/settings", h.UpdateSettings)
	r.Get("/audit", h.Audit)
}

// Customers lists customers with order count and lifetime total
func (h *StoreAdminHandler) Customers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.List(r.Context(), limitParam(r))
	if err != nil {
		h.logger.Error("Failed to list customers", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list customers")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"customers": customers})
}

// Customer returns one customer with their orders
func (h *StoreAdminHandler) Customer(w http.ResponseWriter, r *http.Request) {
	customerID, ok := uuidParam(w, r, "customerID")
	if !ok {
		return
	}

	detail, err := h.customers.Get(r.Context(), customerID)
	if err != nil {
		h.respondCustomerError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, detail)
}

// UpdateCustomerNotes replaces the internal notes on a customer
func (h *StoreAdminHandler) UpdateCustomerNotes(w http.ResponseWriter, r *http.Request) {
	adminID, ok := actor(w, r)
	if !ok {
		return
	}
	customerID, ok := uuidParam(w, r, "customerID")
	if !ok {
		return
	}

	var req NotesRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	customer, err := h.customers.UpdateNotes(r.Context(), adminID, customerID, req.Notes)
	if err != nil {
		h.respondCustomerError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, customer)
}

func (h *StoreAdminHandler) respondCustomerError(w http.ResponseWriter, err error) {
	if errors.Is(err, repository.ErrCustomerNotFound) {
		middleware.RespondWithError(w, http.StatusNotFound, "customer not found")
		return
	}
	h.logger.Error("Customer operation failed", zap.Error(err))
	middleware.RespondWithError(w, http.StatusInternalServerError, "failed to process customer")
}

// GetSettings returns the full settings record
func (h *StoreAdminHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Get(r.Context())
	if err != nil {
		h.logger.Error("Failed to load settings", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, settings)
}

// UpdateSettings replaces the editable settings
func (h *StoreAdminHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	adminID, ok := actor(w, r)
	if !ok {
		return
	}

	var req service.SettingsInput
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	settings, err := h.settings.Update(r.Context(), adminID, req)
	if err != nil {
		h.logger.Error("Failed to update settings", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update settings")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, settings)
}

// Audit returns the newest audit entries
func (h *StoreAdminHandler) Audit(w http.ResponseWriter, r *http.Request) {
	entries, err := h.audit.List(r.Context(), limitParam(r))
	if err != nil {
		h.logger.Error("Failed to list audit logs", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list audit logs")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}
