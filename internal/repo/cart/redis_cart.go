// Package cart_repo holds the Redis-backed shopping cart store. Orders
// only ever empty a cart, so the write surface here is deliberately
// small.
package cart_repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RedisCartStore struct {
	client *redis.Client
}

func NewRedisCartStore(client *redis.Client) *RedisCartStore {
	return &RedisCartStore{client: client}
}

func cartKey(userID uuid.UUID) string {
	return fmt.Sprintf("cart:%s", userID)
}

// Clear drops the user's cart. Deleting a missing key is not an error.
func (s *RedisCartStore) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("clear cart %s: %w", userID, err)
	}
	return nil
}

// Items returns the raw cart hash, keyed by product line. Used by the
// integration suite to assert carts survive or drain around checkout.
func (s *RedisCartStore) Items(ctx context.Context, userID uuid.UUID) (map[string]string, error) {
	items, err := s.client.HGetAll(ctx, cartKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("read cart %s: %w", userID, err)
	}
	return items, nil
}

// SetItem writes one cart line, mirroring what the storefront client
// does before checkout.
func (s *RedisCartStore) SetItem(ctx context.Context, userID uuid.UUID, line, payload string) error {
	if err := s.client.HSet(ctx, cartKey(userID), line, payload).Err(); err != nil {
		return fmt.Errorf("write cart %s: %w", userID, err)
	}
	return nil
}
