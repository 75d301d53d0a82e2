// Package wire defines the JSON bodies exchanged with the order endpoint.
package wire

import (
	"encoding/json"

	"github.com/nikolayk812/cartengine/internal/domain"
)

type OrderEnvelope struct {
	Order Order `json:"pedido"`
}

type Order struct {
	Number       string      `json:"numero"`
	Customer     string      `json:"cliente"`
	CustomerCode string      `json:"codigo_cliente"`
	Items        []OrderItem `json:"itens"`
	Total        json.Number `json:"total"`
}

type OrderItem struct {
	Product  string      `json:"produto"`
	Quantity int         `json:"quantidade"`
	Price    json.Number `json:"preco"`
}

// Ack is the endpoint reply. Error is only set on failures.
type Ack struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func NewOrderEnvelope(order domain.OrderRequest) OrderEnvelope {
	items := make([]OrderItem, 0, len(order.Lines))
	for _, l := range order.Lines {
		items = append(items, OrderItem{
			Product:  l.ProductName,
			Quantity: l.Quantity,
			Price:    json.Number(l.UnitPrice.String()),
		})
	}

	return OrderEnvelope{
		Order: Order{
			Number:       order.OrderID,
			Customer:     order.CustomerName,
			CustomerCode: order.CustomerCode,
			Items:        items,
			Total:        json.Number(order.Total.Round().Amount.StringFixed(order.Total.Scale())),
		},
	}
}
