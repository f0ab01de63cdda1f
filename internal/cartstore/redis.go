package cartstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"reverie-revival/internal/domain"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "cart"

// RedisStore keeps each cart as a JSON string that expires after ttl of inactivity
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) key(cartID string) string {
	return fmt.Sprintf("%s:%s", keyPrefix, cartID)
}

func (s *RedisStore) Load(ctx context.Context, cartID string) (*domain.Cart, error) {
	if !ValidCartID(cartID) {
		return nil, ErrInvalidCartID
	}

	raw, err := s.client.Get(ctx, s.key(cartID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return emptyCart(), nil
		}
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	cart := emptyCart()
	if err := json.Unmarshal(raw, cart); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	return cart, nil
}

func (s *RedisStore) Save(ctx context.Context, cartID string, cart *domain.Cart) error {
	if !ValidCartID(cartID) {
		return ErrInvalidCartID
	}

	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	if err := s.client.Set(ctx, s.key(cartID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, cartID string) error {
	if !ValidCartID(cartID) {
		return ErrInvalidCartID
	}
	if err := s.client.Del(ctx, s.key(cartID)).Err(); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}
