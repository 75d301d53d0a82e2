// Package checkout turns a cart into a submitted order and reconciles the
// cart with the outcome.
package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nikolayk812/cartengine/internal/domain"
	"github.com/nikolayk812/cartengine/internal/metrics"
	"github.com/nikolayk812/cartengine/internal/port"
	log "github.com/sirupsen/logrus"
)

type State string

const (
	StateIdle                State = "idle"
	StateSubmitting          State = "submitting"
	StateSucceeded           State = "succeeded"
	StateFailedLocalFallback State = "failed_local_fallback"
)

const MessageSavedLocally = "Pedido registrado localmente!"

// CartSaver persists the cart after it has been cleared by a successful checkout.
type CartSaver interface {
	Save(ctx context.Context, userCode string, cart *domain.Cart) error
}

type Result struct {
	State           State
	OrderID         string
	CompletedAt     time.Time
	CompletedAtText string
	Message         string
	// Err is the submission failure behind StateFailedLocalFallback.
	Err error
}

type Submitter struct {
	sender   port.OrderSender
	saver    CartSaver
	ids      IDGenerator
	now      func() time.Time
	busy     port.BusyIndicator
	metrics  *metrics.CheckoutMetrics
	logger   *log.Entry
	location *time.Location

	mu    sync.Mutex
	state State
}

type Option func(*Submitter)

func WithIDGenerator(ids IDGenerator) Option {
	return func(s *Submitter) { s.ids = ids }
}

func WithClock(now func() time.Time) Option {
	return func(s *Submitter) { s.now = now }
}

func WithBusyIndicator(busy port.BusyIndicator) Option {
	return func(s *Submitter) { s.busy = busy }
}

func WithMetrics(m *metrics.CheckoutMetrics) Option {
	return func(s *Submitter) { s.metrics = m }
}

func WithLogger(logger *log.Entry) Option {
	return func(s *Submitter) { s.logger = logger }
}

// WithLocation sets the zone of the completion time shown to the user.
func WithLocation(loc *time.Location) Option {
	return func(s *Submitter) { s.location = loc }
}

func NewSubmitter(sender port.OrderSender, saver CartSaver, opts ...Option) *Submitter {
	s := &Submitter{
		sender:   sender,
		saver:    saver,
		now:      time.Now,
		busy:     noopBusy{},
		logger:   log.WithField("component", "checkout"),
		location: time.Local,
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ids == nil {
		s.ids = NewSequenceIDs(s.now)
	}

	return s
}

// State reports the state of the latest attempt.
func (s *Submitter) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Checkout submits a frozen copy of cart. An empty cart is a no-op. A failed
// submission leaves the cart untouched and is reported through the Result,
// not the error. The error is set only when a successful order's cleared cart
// could not be persisted.
func (s *Submitter) Checkout(ctx context.Context, session domain.UserSession, cart *domain.Cart) (Result, error) {
	if cart == nil || cart.IsEmpty() {
		s.metrics.RecordOutcome(metrics.OutcomeSkipped, 0)
		return Result{State: StateIdle}, nil
	}

	s.setState(StateSubmitting)
	s.busy.SetBusy(true)
	defer s.busy.SetBusy(false)

	order := domain.NewOrderRequest(s.ids.NewOrderID(), session, cart, s.now())
	logger := s.logger.WithFields(log.Fields{
		"order_id": order.OrderID,
		"customer": order.CustomerCode,
		"lines":    len(order.Lines),
	})

	s.metrics.RecordAttempt()
	started := time.Now()

	if err := s.sender.Send(ctx, order); err != nil {
		s.setState(StateFailedLocalFallback)
		s.metrics.RecordOutcome(metrics.OutcomeLocalFallback, time.Since(started))
		logger.WithError(err).Warn("order submission failed, cart kept")

		return Result{
			State:   StateFailedLocalFallback,
			OrderID: order.OrderID,
			Message: MessageSavedLocally,
			Err:     err,
		}, nil
	}

	s.setState(StateSucceeded)
	s.metrics.RecordOutcome(metrics.OutcomeSucceeded, time.Since(started))

	completed := s.now().In(s.location)
	result := Result{
		State:           StateSucceeded,
		OrderID:         order.OrderID,
		CompletedAt:     completed,
		CompletedAtText: completed.Format("15:04"),
	}
	result.Message = fmt.Sprintf("Pedido %s finalizado às %s!", result.OrderID, result.CompletedAtText)

	cart.Clear()
	if err := s.saver.Save(ctx, session.Code, cart); err != nil {
		logger.WithError(err).Error("cleared cart not persisted")
		return result, fmt.Errorf("saver.Save: %w", err)
	}

	logger.Info("order submitted")
	return result, nil
}

func (s *Submitter) setState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = state
}

type noopBusy struct{}

func (noopBusy) SetBusy(bool) {}
