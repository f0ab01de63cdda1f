package transport

import (
	"errors"
	"net/http"

	"reverie-revival/internal/cartstore"
	"reverie-revival/internal/middleware"
	"reverie-revival/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CartItemRequest adds to or sets the quantity of a cart line
type CartItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Size      string `json:"size" validate:"required"`
	Color     string `json:"color" validate:"required"`
	Quantity  int    `json:"quantity"`
}

func (req CartItemRequest) ref() service.CartLineRef {
	return service.CartLineRef{ProductID: req.ProductID, Size: req.Size, Color: req.Color}
}

// WishlistToggleRequest adds or removes a product from the wishlist
type WishlistToggleRequest struct {
	ProductID string `json:"productId" validate:"required"`
}

// CartHandler serves carts and wishlists keyed by a client supplied id
type CartHandler struct {
	carts  service.CartService
	logger *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(carts service.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{carts: carts, logger: logger}
}

// RegisterRoutes registers cart and wishlist routes
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/cart/{cartID}", func(r chi.Router) {
		r.Get("/", h.View)
		r.Delete("/", h.Clear)
		r.Post("/items", h.AddItem)
		r.Patch("/items", h.UpdateItem)
		r.Delete("/items", h.RemoveItem)
	})
	r.Route("/api/wishlist/{cartID}", func(r chi.Router) {
		r.Get("/", h.View)
		r.Post("/toggle", h.ToggleWishlist)
	})
}

// View returns the cart with totals and the wishlist
func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	view, err := h.carts.View(r.Context(), chi.URLParam(r, "cartID"))
	h.respond(w, view, err)
}

// AddItem merges a quantity into the cart
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req CartItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	view, err := h.carts.Add(r.Context(), chi.URLParam(r, "cartID"), req.ref(), req.Quantity)
	h.respond(w, view, err)
}

// UpdateItem sets a line's quantity; zero or less removes it
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req CartItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	view, err := h.carts.UpdateQuantity(r.Context(), chi.URLParam(r, "cartID"), req.ref(), req.Quantity)
	h.respond(w, view, err)
}

// RemoveItem removes the line named by the productId, size and color query parameters
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ref := service.CartLineRef{ProductID: q.Get("productId"), Size: q.Get("size"), Color: q.Get("color")}
	if err := middleware.ValidateRequest(ref); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	view, err := h.carts.Remove(r.Context(), chi.URLParam(r, "cartID"), ref)
	h.respond(w, view, err)
}

// Clear empties the cart lines
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	view, err := h.carts.Clear(r.Context(), chi.URLParam(r, "cartID"))
	h.respond(w, view, err)
}

// ToggleWishlist flips a product's wishlist membership
func (h *CartHandler) ToggleWishlist(w http.ResponseWriter, r *http.Request) {
	var req WishlistToggleRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	view, err := h.carts.ToggleWishlist(r.Context(), chi.URLParam(r, "cartID"), req.ProductID)
	h.respond(w, view, err)
}

func (h *CartHandler) respond(w http.ResponseWriter, view *service.CartView, err error) {
	switch {
	case err == nil:
		middleware.RespondWithJSON(w, http.StatusOK, view)
	case errors.Is(err, cartstore.ErrInvalidCartID):
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid cart id")
	case errors.Is(err, service.ErrInvalidQuantity):
		middleware.RespondWithError(w, http.StatusBadRequest, "quantity must be positive")
	case errors.Is(err, service.ErrVariantUnavailable):
		middleware.RespondWithError(w, http.StatusNotFound, "variant is not available")
	case errors.Is(err, service.ErrCartLineNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "cart line not found")
	default:
		h.logger.Error("Cart operation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update cart")
	}
}
