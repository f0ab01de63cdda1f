package cartstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"reverie-revival/internal/domain"
)

// MemoryStore is the in-process Store used when Redis is disabled. Carts are
// stored encoded so callers never share slices with the store.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string][]byte)}
}

func (s *MemoryStore) Load(_ context.Context, cartID string) (*domain.Cart, error) {
	if !ValidCartID(cartID) {
		return nil, ErrInvalidCartID
	}

	s.mu.RLock()
	raw, ok := s.carts[cartID]
	s.mu.RUnlock()

	cart := emptyCart()
	if !ok {
		return cart, nil
	}
	if err := json.Unmarshal(raw, cart); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	return cart, nil
}

func (s *MemoryStore) Save(_ context.Context, cartID string, cart *domain.Cart) error {
	if !ValidCartID(cartID) {
		return ErrInvalidCartID
	}

	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	s.mu.Lock()
	s.carts[cartID] = raw
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, cartID string) error {
	if !ValidCartID(cartID) {
		return ErrInvalidCartID
	}

	s.mu.Lock()
	delete(s.carts, cartID)
	s.mu.Unlock()
	return nil
}
