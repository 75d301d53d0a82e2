package domain

import "github.com/shopspring/decimal"

// Product is an immutable catalog record. JSON field names follow the
// catalog document so a persisted cart carries the same snapshot it was given.
type Product struct {
	ID        string          `json:"id"`
	Name      string          `json:"nome"`
	UnitPrice decimal.Decimal `json:"preco"`
	Category  string          `json:"categoria,omitempty"`
	ImageRef  string          `json:"imagem"`
}

func (p Product) Price(pricing Pricing) Money {
	return NewMoney(p.UnitPrice, pricing.Currency)
}
