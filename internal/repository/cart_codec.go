package repository

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/nikolayk812/cartengine/internal/domain"
	"github.com/shopspring/decimal"
)

// slotLine is one value of the persisted mapping "<product id>" -> line.
type slotLine struct {
	Product  slotProduct `json:"product"`
	Quantity int         `json:"quantity"`
}

type slotProduct struct {
	ID       string      `json:"id"`
	Name     string      `json:"nome"`
	Price    json.Number `json:"preco"`
	Category string      `json:"categoria,omitempty"`
	Image    string      `json:"imagem"`
}

// EncodeCart writes the cart as a JSON object keyed by product id, keys in
// insertion order.
func EncodeCart(cart *domain.Cart) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, line := range cart.Lines() {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(line.Product.ID)
		if err != nil {
			return nil, fmt.Errorf("json.Marshal key: %w", err)
		}

		value, err := json.Marshal(mapLineToSlot(line))
		if err != nil {
			return nil, fmt.Errorf("json.Marshal line[%s]: %w", line.Product.ID, err)
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// DecodeCart rebuilds a cart from EncodeCart output. Every failure wraps
// domain.ErrCorruptCart.
func DecodeCart(payload []byte, owner string, pricing domain.Pricing) (*domain.Cart, error) {
	cart := domain.NewCart(owner, pricing)

	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, corrupt("read key: %v", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, corrupt("key %v is not a string", tok)
		}

		var line slotLine
		if err := dec.Decode(&line); err != nil {
			return nil, corrupt("decode line[%s]: %v", key, err)
		}

		product, err := mapSlotToProduct(key, line)
		if err != nil {
			return nil, err
		}

		if cart.Quantity(key) > 0 {
			return nil, corrupt("duplicate key %s", key)
		}
		if err := cart.AddLine(product, line.Quantity); err != nil {
			return nil, corrupt("line[%s]: %v", key, err)
		}
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, corrupt("trailing data after cart")
	}

	return cart, nil
}

func mapLineToSlot(line domain.CartLine) slotLine {
	return slotLine{
		Product: slotProduct{
			ID:       line.Product.ID,
			Name:     line.Product.Name,
			Price:    json.Number(line.Product.UnitPrice.String()),
			Category: line.Product.Category,
			Image:    line.Product.ImageRef,
		},
		Quantity: line.Quantity,
	}
}

func mapSlotToProduct(key string, line slotLine) (domain.Product, error) {
	if line.Product.ID != key {
		return domain.Product{}, corrupt("key %s holds product %s", key, line.Product.ID)
	}
	if line.Quantity < 1 {
		return domain.Product{}, corrupt("line[%s] has quantity %d", key, line.Quantity)
	}

	price, err := decimal.NewFromString(line.Product.Price.String())
	if err != nil {
		return domain.Product{}, corrupt("line[%s] price[%s]: %v", key, line.Product.Price, err)
	}
	if price.IsNegative() {
		return domain.Product{}, corrupt("line[%s] has negative price", key)
	}

	return domain.Product{
		ID:        line.Product.ID,
		Name:      line.Product.Name,
		UnitPrice: price,
		Category:  line.Product.Category,
		ImageRef:  line.Product.Image,
	}, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return corrupt("expected %v: %v", want, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != want {
		return corrupt("expected %v, got %v", want, tok)
	}
	return nil
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrCorruptCart, fmt.Sprintf(format, args...))
}
