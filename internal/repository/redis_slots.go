package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/nikolayk812/cartengine/internal/port"
	"github.com/redis/go-redis/v9"
)

// redisSlots keeps slots without expiry; a cart lives until it is overwritten.
type redisSlots struct {
	client *redis.Client
}

func NewRedisSlots(client *redis.Client) port.SlotStore {
	return &redisSlots{client: client}
}

func (s *redisSlots) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("key is empty")
	}

	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, port.ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("client.Get: %w", err)
	}

	return data, nil
}

func (s *redisSlots) Put(ctx context.Context, key string, payload []byte) error {
	if key == "" {
		return fmt.Errorf("key is empty")
	}

	if err := s.client.Set(ctx, key, payload, 0).Err(); err != nil {
		return fmt.Errorf("client.Set: %w", err)
	}

	return nil
}

func (s *redisSlots) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("key is empty")
	}

	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("client.Del: %w", err)
	}

	return nil
}
