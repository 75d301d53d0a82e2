package port

import (
	"context"

	"github.com/nikolayk812/cartengine/internal/domain"
)

// OrderSender delivers an order to the remote endpoint. A nil error means
// receipt was acknowledged.
type OrderSender interface {
	Send(ctx context.Context, order domain.OrderRequest) error
}

// BusyIndicator is the presentation affordance toggled around a checkout.
type BusyIndicator interface {
	SetBusy(busy bool)
}
