package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"reverie-revival/internal/cartstore"
	"reverie-revival/internal/domain"
	"reverie-revival/internal/repository"
)

var (
	ErrVariantUnavailable = errors.New("variant is not available")
	ErrInvalidQuantity    = errors.New("quantity must be positive")
	ErrCartLineNotFound   = errors.New("cart line not found")
)

// CartView is a cart with its computed totals
type CartView struct {
	Lines    []domain.CartLine `json:"lines"`
	Wishlist []string          `json:"wishlist"`
	Total    int64             `json:"total"`
	Count    int               `json:"count"`
}

// CartLineRef identifies a line by product, size and color
type CartLineRef struct {
	ProductID string `json:"productId" validate:"required"`
	Size      string `json:"size" validate:"required"`
	Color     string `json:"color" validate:"required"`
}

// CartService manages shopper carts and wishlists held in a cartstore.Store
type CartService interface {
	View(ctx context.Context, cartID string) (*CartView, error)
	Add(ctx context.Context, cartID string, ref CartLineRef, quantity int) (*CartView, error)
	UpdateQuantity(ctx context.Context, cartID string, ref CartLineRef, quantity int) (*CartView, error)
	Remove(ctx context.Context, cartID string, ref CartLineRef) (*CartView, error)
	Clear(ctx context.Context, cartID string) (*CartView, error)
	ToggleWishlist(ctx context.Context, cartID, productID string) (*CartView, error)
}

type cartService struct {
	store   cartstore.Store
	catalog repository.CatalogRepository
}

// NewCartService creates a new instance of CartService
func NewCartService(store cartstore.Store, catalog repository.CatalogRepository) CartService {
	return &cartService{store: store, catalog: catalog}
}

func (s *cartService) View(ctx context.Context, cartID string) (*CartView, error) {
	cart, err := s.store.Load(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return newCartView(cart), nil
}

// Add merges quantity into an existing matching line or appends a new line
// priced from the catalog at the time of the call
func (s *cartService) Add(ctx context.Context, cartID string, ref CartLineRef, quantity int) (*CartView, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	variant, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	return s.update(ctx, cartID, func(cart *domain.Cart) error {
		for i := range cart.Lines {
			if cart.Lines[i].Matches(ref.ProductID, ref.Size, ref.Color) {
				cart.Lines[i].Quantity += quantity
				return nil
			}
		}
		cart.Lines = append(cart.Lines, domain.CartLine{
			ProductID:    variant.ProductID.String(),
			ProductTitle: variant.ProductTitle,
			Size:         variant.Size,
			Color:        variant.Color,
			SKU:          variant.SKU,
			Quantity:     quantity,
			UnitPrice:    variant.UnitPrice(),
		})
		return nil
	})
}

// UpdateQuantity sets a line's quantity; zero or less removes the line
func (s *cartService) UpdateQuantity(ctx context.Context, cartID string, ref CartLineRef, quantity int) (*CartView, error) {
	if quantity <= 0 {
		return s.Remove(ctx, cartID, ref)
	}

	return s.update(ctx, cartID, func(cart *domain.Cart) error {
		for i := range cart.Lines {
			if cart.Lines[i].Matches(ref.ProductID, ref.Size, ref.Color) {
				cart.Lines[i].Quantity = quantity
				return nil
			}
		}
		return ErrCartLineNotFound
	})
}

func (s *cartService) Remove(ctx context.Context, cartID string, ref CartLineRef) (*CartView, error) {
	return s.update(ctx, cartID, func(cart *domain.Cart) error {
		kept := cart.Lines[:0]
		for _, line := range cart.Lines {
			if !line.Matches(ref.ProductID, ref.Size, ref.Color) {
				kept = append(kept, line)
			}
		}
		cart.Lines = kept
		return nil
	})
}

// Clear empties the lines but keeps the wishlist. A cart left with nothing
// in it is removed from the store.
func (s *cartService) Clear(ctx context.Context, cartID string) (*CartView, error) {
	cart, err := s.store.Load(ctx, cartID)
	if err != nil {
		return nil, err
	}

	cart.Lines = []domain.CartLine{}
	if len(cart.Wishlist) == 0 {
		if err := s.store.Delete(ctx, cartID); err != nil {
			return nil, err
		}
		return newCartView(cart), nil
	}

	if err := s.store.Save(ctx, cartID, cart); err != nil {
		return nil, err
	}
	return newCartView(cart), nil
}

func (s *cartService) ToggleWishlist(ctx context.Context, cartID, productID string) (*CartView, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, ErrVariantUnavailable
	}

	return s.update(ctx, cartID, func(cart *domain.Cart) error {
		for i, id := range cart.Wishlist {
			if id == productID {
				cart.Wishlist = append(cart.Wishlist[:i], cart.Wishlist[i+1:]...)
				return nil
			}
		}
		cart.Wishlist = append(cart.Wishlist, productID)
		return nil
	})
}

func (s *cartService) update(ctx context.Context, cartID string, fn func(cart *domain.Cart) error) (*CartView, error) {
	cart, err := s.store.Load(ctx, cartID)
	if err != nil {
		return nil, err
	}

	if err := fn(cart); err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, cartID, cart); err != nil {
		return nil, err
	}

	return newCartView(cart), nil
}

func (s *cartService) resolve(ctx context.Context, ref CartLineRef) (*domain.PurchasableVariant, error) {
	variants, err := s.catalog.FindPurchasableVariants(ctx, []string{strings.TrimSpace(ref.ProductID)})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve variant: %w", err)
	}

	key := variantKey(ref.ProductID, ref.Size, ref.Color)
	for i := range variants {
		if variantKey(variants[i].ProductID.String(), variants[i].Size, variants[i].Color) == key {
			return &variants[i], nil
		}
	}

	return nil, ErrVariantUnavailable
}

func newCartView(cart *domain.Cart) *CartView {
	lines := cart.Lines
	if lines == nil {
		lines = []domain.CartLine{}
	}
	wishlist := cart.Wishlist
	if wishlist == nil {
		wishlist = []string{}
	}
	return &CartView{
		Lines:    lines,
		Wishlist: wishlist,
		Total:    cart.Total(),
		Count:    cart.Count(),
	}
}
