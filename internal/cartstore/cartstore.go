// Package cartstore persists shopper carts and wishlists as opaque
// key-value documents.
package cartstore

import (
	"context"
	"errors"

	"reverie-revival/internal/domain"
)

var ErrInvalidCartID = errors.New("invalid cart id")

// Store loads and saves carts by client-supplied id. Load returns an empty
// cart for unknown ids.
type Store interface {
	Load(ctx context.Context, cartID string) (*domain.Cart, error)
	Save(ctx context.Context, cartID string, cart *domain.Cart) error
	Delete(ctx context.Context, cartID string) error
}

func emptyCart() *domain.Cart {
	return &domain.Cart{Lines: []domain.CartLine{}, Wishlist: []string{}}
}

// ValidCartID accepts 1-128 characters of letters, digits, '-' and '_'
func ValidCartID(id string) bool {
	if len(id) == 0 || len(id) > 128 {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}
