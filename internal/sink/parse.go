package sink

import (
	"errors"
	"fmt"
	"time"

	"github.com/nikolayk812/cartengine/internal/wire"
	"github.com/shopspring/decimal"
)

var errInvalidOrder = errors.New("invalid order")

func parseOrder(o wire.Order, receivedAt time.Time) (RecordedOrder, error) {
	if o.Number == "" {
		return RecordedOrder{}, fmt.Errorf("%w: numero is empty", errInvalidOrder)
	}
	if o.Customer == "" {
		return RecordedOrder{}, fmt.Errorf("%w: cliente is empty", errInvalidOrder)
	}
	if len(o.Items) == 0 {
		return RecordedOrder{}, fmt.Errorf("%w: itens is empty", errInvalidOrder)
	}

	items := make([]RecordedItem, 0, len(o.Items))
	total := decimal.Zero
	for i, it := range o.Items {
		if it.Quantity < 1 {
			return RecordedOrder{}, fmt.Errorf("%w: itens[%d] quantidade must be at least 1", errInvalidOrder, i)
		}

		price, err := decimal.NewFromString(it.Price.String())
		if err != nil {
			return RecordedOrder{}, fmt.Errorf("%w: itens[%d] preco: %v", errInvalidOrder, i, err)
		}
		if price.IsNegative() {
			return RecordedOrder{}, fmt.Errorf("%w: itens[%d] preco is negative", errInvalidOrder, i)
		}

		items = append(items, RecordedItem{Product: it.Product, Quantity: it.Quantity, Price: price})
		total = total.Add(price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	declared := decimal.Zero
	if o.Total != "" {
		d, err := decimal.NewFromString(o.Total.String())
		if err != nil {
			return RecordedOrder{}, fmt.Errorf("%w: total: %v", errInvalidOrder, err)
		}
		declared = d
	}

	return RecordedOrder{
		Number:        o.Number,
		Customer:      o.Customer,
		CustomerCode:  o.CustomerCode,
		Items:         items,
		Total:         total,
		DeclaredTotal: declared,
		ReceivedAt:    receivedAt,
	}, nil
}
