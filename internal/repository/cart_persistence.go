package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/nikolayk812/cartengine/internal/domain"
	"github.com/nikolayk812/cartengine/internal/port"
	log "github.com/sirupsen/logrus"
)

const DefaultKeyPrefix = "comercial_soares_cart_"

// CartPersistence mirrors carts into a SlotStore under prefix+userCode.
type CartPersistence struct {
	store   port.SlotStore
	prefix  string
	pricing domain.Pricing
	logger  *log.Entry
}

func NewCartPersistence(store port.SlotStore, prefix string, pricing domain.Pricing, logger *log.Entry) *CartPersistence {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if logger == nil {
		logger = log.WithField("component", "cart_persistence")
	}

	return &CartPersistence{
		store:   store,
		prefix:  prefix,
		pricing: pricing,
		logger:  logger,
	}
}

func (p *CartPersistence) Key(userCode string) string {
	return p.prefix + userCode
}

func (p *CartPersistence) Pricing() domain.Pricing {
	return p.pricing
}

// Save overwrites the slot of userCode with the current cart content.
func (p *CartPersistence) Save(ctx context.Context, userCode string, cart *domain.Cart) error {
	if userCode == "" {
		return fmt.Errorf("userCode is empty")
	}

	payload, err := EncodeCart(cart)
	if err != nil {
		return fmt.Errorf("EncodeCart: %w", err)
	}

	if err := p.store.Put(ctx, p.Key(userCode), payload); err != nil {
		return fmt.Errorf("store.Put: %w", err)
	}

	return nil
}

// Load returns the persisted cart of userCode. An absent or corrupt slot
// yields an empty cart and no error. A store failure yields an empty cart
// together with the error.
func (p *CartPersistence) Load(ctx context.Context, userCode string) (*domain.Cart, error) {
	empty := domain.NewCart(userCode, p.pricing)
	if userCode == "" {
		return empty, fmt.Errorf("userCode is empty")
	}

	key := p.Key(userCode)

	payload, err := p.store.Get(ctx, key)
	if errors.Is(err, port.ErrSlotNotFound) {
		return empty, nil
	}
	if err != nil {
		return empty, fmt.Errorf("store.Get: %w", err)
	}

	cart, err := DecodeCart(payload, userCode, p.pricing)
	if err != nil {
		p.logger.WithError(err).WithField("key", key).Warn("persisted cart discarded")
		return empty, nil
	}

	return cart, nil
}
