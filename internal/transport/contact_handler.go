package transport

import (
	"errors"
	"net/http"

	"reverie-revival/internal/middleware"
	"reverie-revival/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const msgContactFailed = "Unable to send message at this time."

// ContactHandler serves the storefront contact form and the admin inbox. A
// nil service means no database is configured.
type ContactHandler struct {
	contact service.ContactService
	logger  *zap.Logger
}

// NewContactHandler creates a new ContactHandler
func NewContactHandler(contact service.ContactService, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{contact: contact, logger: logger}
}

// RegisterPublicRoutes registers POST /api/contact
func (h *ContactHandler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/api/contact", h.Submit)
}

// RegisterRoutes registers the inbox on an admin router
func (h *ContactHandler) RegisterRoutes(r chi.Router) {
	r.Get("/messages", h.Messages)
}

// Submit stores a contact message. Errors use the storefront's flat body.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if h.contact == nil {
		respondCheckoutError(w, http.StatusInternalServerError, CheckoutErrorResponse{Error: msgDatabaseNotConfigured})
		return
	}

	var input service.ContactInput
	if err := middleware.DecodeJSON(r, &input); err != nil {
		respondCheckoutError(w, http.StatusBadRequest, CheckoutErrorResponse{Error: msgInvalidPayload})
		return
	}

	if _, err := h.contact.Submit(r.Context(), input); err != nil {
		if errors.Is(err, service.ErrInvalidContact) {
			h.logger.Debug("Contact message rejected", zap.Error(err))
			respondCheckoutError(w, http.StatusBadRequest, CheckoutErrorResponse{Error: msgInvalidPayload})
			return
		}
		h.logger.Error("Failed to store contact message", zap.Error(err))
		respondCheckoutError(w, http.StatusInternalServerError, CheckoutErrorResponse{Error: msgContactFailed})
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Messages lists contact messages newest first
func (h *ContactHandler) Messages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.contact.List(r.Context(), limitParam(r))
	if err != nil {
		h.logger.Error("Failed to list contact messages", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"messages": messages})
}
