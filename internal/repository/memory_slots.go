package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/nikolayk812/cartengine/internal/port"
)

type memorySlots struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

func NewMemorySlots() port.SlotStore {
	return &memorySlots{slots: make(map[string][]byte)}
}

func (s *memorySlots) Get(_ context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("key is empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	payload, ok := s.slots[key]
	if !ok {
		return nil, port.ErrSlotNotFound
	}

	return append([]byte(nil), payload...), nil
}

func (s *memorySlots) Put(_ context.Context, key string, payload []byte) error {
	if key == "" {
		return fmt.Errorf("key is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.slots[key] = append([]byte(nil), payload...)
	return nil
}

func (s *memorySlots) Delete(_ context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("key is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.slots, key)
	return nil
}
