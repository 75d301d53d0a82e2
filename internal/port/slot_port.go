package port

import (
	"context"
	"errors"
)

var ErrSlotNotFound = errors.New("slot not found")

// SlotStore is a durable key-value slot holding one serialized cart per key.
type SlotStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, payload []byte) error
	Delete(ctx context.Context, key string) error
}
