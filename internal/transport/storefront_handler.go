package transport

import (
	"net/http"

	"reverie-revival/internal/domain"
	"reverie-revival/internal/middleware"
	"reverie-revival/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// StorefrontHandler serves the public catalog and settings. Nil services
// answer with empty data so the storefront renders without a database.
type StorefrontHandler struct {
	storefront service.StorefrontService
	settings   service.SettingsService
	logger     *zap.Logger
}

// NewStorefrontHandler creates a new StorefrontHandler
func NewStorefrontHandler(storefront service.StorefrontService, settings service.SettingsService, logger *zap.Logger) *StorefrontHandler {
	return &StorefrontHandler{storefront: storefront, settings: settings, logger: logger}
}

// RegisterRoutes registers the public storefront routes
func (h *StorefrontHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/storefront/products", h.Products)
	r.Get("/api/settings", h.PublicSettings)
}

// Products lists purchasable products with their categories
func (h *StorefrontHandler) Products(w http.ResponseWriter, r *http.Request) {
	if h.storefront == nil {
		middleware.RespondWithJSON(w, http.StatusOK, service.EmptyCatalog())
		return
	}

	catalog, err := h.storefront.Catalog(r.Context())
	if err != nil {
		h.logger.Error("Failed to load storefront catalog", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, catalog)
}

// PublicSettings returns the storefront-visible settings
func (h *StorefrontHandler) PublicSettings(w http.ResponseWriter, r *http.Request) {
	if h.settings == nil {
		middleware.RespondWithJSON(w, http.StatusOK, service.ToPublicSettings(&domain.Settings{StoreName: domain.DefaultStoreName}))
		return
	}

	settings, err := h.settings.Public(r.Context())
	if err != nil {
		h.logger.Error("Failed to load settings", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, settings)
}
