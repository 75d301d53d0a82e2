package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderLine struct {
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// OrderRequest is a frozen copy of a cart taken at checkout time.
type OrderRequest struct {
	OrderID      string
	CustomerCode string
	CustomerName string
	Lines        []OrderLine
	Total        Money

	CreatedAt time.Time
}

func NewOrderRequest(orderID string, session UserSession, cart *Cart, now time.Time) OrderRequest {
	cartLines, totals := cart.Snapshot()

	lines := make([]OrderLine, 0, len(cartLines))
	for _, l := range cartLines {
		lines = append(lines, OrderLine{
			ProductName: l.Product.Name,
			Quantity:    l.Quantity,
			UnitPrice:   l.Product.UnitPrice,
		})
	}

	return OrderRequest{
		OrderID:      orderID,
		CustomerCode: session.Code,
		CustomerName: session.DisplayName,
		Lines:        lines,
		Total:        totals.Total,
		CreatedAt:    now,
	}
}
