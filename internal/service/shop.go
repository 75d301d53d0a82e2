// Package service ties the session lifecycle to the cart, its persistence and checkout.
package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/nikolayk812/cartengine/internal/checkout"
	"github.com/nikolayk812/cartengine/internal/domain"
	"github.com/nikolayk812/cartengine/internal/port"
	log "github.com/sirupsen/logrus"
)

// EventCartSwapped is forwarded to subscribers when login or logout replaces the cart.
const EventCartSwapped domain.EventKind = "cart_swapped"

type CartRepository interface {
	Load(ctx context.Context, userCode string) (*domain.Cart, error)
	Save(ctx context.Context, userCode string, cart *domain.Cart) error
}

type CheckoutSubmitter interface {
	Checkout(ctx context.Context, session domain.UserSession, cart *domain.Cart) (checkout.Result, error)
}

// Shop holds at most one active session and its cart. Cart operations
// without a session are no-ops.
type Shop struct {
	catalog   port.ProductCatalog
	directory port.UserDirectory
	carts     CartRepository
	submitter CheckoutSubmitter
	logger    *log.Entry

	mu          sync.Mutex
	session     *domain.UserSession
	cart        *domain.Cart
	unsubscribe func()
	listeners   []func(domain.CartEvent)
}

func NewShop(
	catalog port.ProductCatalog,
	directory port.UserDirectory,
	carts CartRepository,
	submitter CheckoutSubmitter,
	logger *log.Entry,
) *Shop {
	if logger == nil {
		logger = log.WithField("component", "shop")
	}

	return &Shop{
		catalog:   catalog,
		directory: directory,
		carts:     carts,
		submitter: submitter,
		logger:    logger,
	}
}

// Login starts a session for code and restores its persisted cart.
// A storage failure is logged and the session starts with an empty cart.
func (s *Shop) Login(ctx context.Context, code string) (domain.UserSession, error) {
	session, ok := s.directory.Lookup(code)
	if !ok {
		return domain.UserSession{}, fmt.Errorf("login %q: %w", code, domain.ErrUnknownUser)
	}

	logger := s.logger.WithField("user", session.Code)

	cart, err := s.carts.Load(ctx, session.Code)
	if err != nil {
		logger.WithError(err).Warn("persisted cart unavailable, starting empty")
	}

	s.swap(&session, cart)
	logger.WithField("lines", cart.LineCount()).Info("session started")

	return session, nil
}

// Logout drops the in-memory cart. The persisted slot is kept for the next login.
func (s *Shop) Logout() {
	s.mu.Lock()
	active := s.session != nil
	s.mu.Unlock()

	if !active {
		return
	}
	s.swap(nil, nil)
	s.logger.Info("session ended")
}

func (s *Shop) Session() (domain.UserSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return domain.UserSession{}, false
	}
	return *s.session, true
}

// Cart returns the active cart, nil when logged out.
func (s *Shop) Cart() *domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart
}

func (s *Shop) AddToCart(ctx context.Context, productID string, qty int) error {
	return s.mutate(ctx, func(cart *domain.Cart) error {
		p, ok := s.catalog.FindProduct(productID)
		if !ok {
			return fmt.Errorf("add %q: %w", productID, domain.ErrProductNotFound)
		}
		return cart.AddLine(p, qty)
	})
}

func (s *Shop) RemoveFromCart(ctx context.Context, productID string) error {
	return s.mutate(ctx, func(cart *domain.Cart) error {
		cart.RemoveLine(productID)
		return nil
	})
}

func (s *Shop) SetQuantity(ctx context.Context, productID string, qty int) error {
	return s.mutate(ctx, func(cart *domain.Cart) error {
		return cart.SetQuantity(productID, qty)
	})
}

func (s *Shop) Increment(ctx context.Context, productID string) error {
	return s.step(ctx, productID, 1)
}

// Decrement removes the line when its quantity drops below 1.
func (s *Shop) Decrement(ctx context.Context, productID string) error {
	return s.step(ctx, productID, -1)
}

func (s *Shop) ClearCart(ctx context.Context) error {
	return s.mutate(ctx, func(cart *domain.Cart) error {
		cart.Clear()
		return nil
	})
}

// Checkout submits the active cart. Without a session it reports StateIdle.
func (s *Shop) Checkout(ctx context.Context) (checkout.Result, error) {
	session, cart, ok := s.active()
	if !ok {
		return checkout.Result{State: checkout.StateIdle}, nil
	}

	result, err := s.submitter.Checkout(ctx, session, cart)
	if err != nil {
		return result, fmt.Errorf("submitter.Checkout: %w", err)
	}
	return result, nil
}

// Subscribe registers fn for events of the current and any later cart.
func (s *Shop) Subscribe(fn func(domain.CartEvent)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listeners = append(s.listeners, fn)
}

func (s *Shop) step(ctx context.Context, productID string, delta int) error {
	return s.mutate(ctx, func(cart *domain.Cart) error {
		line, ok := cart.Line(productID)
		if !ok {
			return fmt.Errorf("step %q: %w", productID, domain.ErrLineNotFound)
		}
		return cart.SetQuantity(productID, line.Quantity+delta)
	})
}

// mutate applies fn to the active cart and writes the result through to storage.
// The in-memory change stays applied when the write fails.
func (s *Shop) mutate(ctx context.Context, fn func(cart *domain.Cart) error) error {
	session, cart, ok := s.active()
	if !ok {
		s.logger.Debug("cart operation ignored without session")
		return nil
	}

	if err := fn(cart); err != nil {
		return err
	}

	if err := s.carts.Save(ctx, session.Code, cart); err != nil {
		s.logger.WithError(err).WithField("user", session.Code).Warn("cart not persisted")
		return fmt.Errorf("carts.Save: %w", err)
	}
	return nil
}

func (s *Shop) active() (domain.UserSession, *domain.Cart, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil || s.cart == nil {
		return domain.UserSession{}, nil, false
	}
	return *s.session, s.cart, true
}

func (s *Shop) swap(session *domain.UserSession, cart *domain.Cart) {
	s.mu.Lock()
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	s.session = session
	s.cart = cart
	count := 0
	if cart != nil {
		s.unsubscribe = cart.Subscribe(s.forward)
		count = cart.LineCount()
	}
	s.mu.Unlock()

	s.forward(domain.CartEvent{Kind: EventCartSwapped, LineCount: count})
}

func (s *Shop) forward(event domain.CartEvent) {
	s.mu.Lock()
	fns := append(([]func(domain.CartEvent))(nil), s.listeners...)
	s.mu.Unlock()

	for _, fn := range fns {
		fn(event)
	}
}
