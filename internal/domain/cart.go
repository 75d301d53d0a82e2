package domain

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Pricing is the flat pricing configuration applied to every line of a cart.
type Pricing struct {
	Currency currency.Unit
	TaxRate  decimal.Decimal
}

type CartLine struct {
	Product  Product
	Quantity int
}

func (l CartLine) Amount(pricing Pricing) Money {
	return l.Product.Price(pricing).Mul(int64(l.Quantity))
}

type Totals struct {
	Subtotal Money
	Tax      Money
	Total    Money
}

type EventKind string

const (
	EventLineAdded   EventKind = "line_added"
	EventLineUpdated EventKind = "line_updated"
	EventLineRemoved EventKind = "line_removed"
	EventCleared     EventKind = "cleared"
)

// CartEvent is delivered to subscribers after a mutation has been applied.
type CartEvent struct {
	Kind      EventKind
	ProductID string
	LineCount int
}

type listener struct {
	id int
	fn func(CartEvent)
}

// Cart maps product IDs to lines, keeping insertion order for display.
type Cart struct {
	mu sync.Mutex

	owner   string
	pricing Pricing
	lines   map[string]*CartLine
	order   []string

	listeners  []listener
	listenerID int
}

func NewCart(owner string, pricing Pricing) *Cart {
	return &Cart{
		owner:   owner,
		pricing: pricing,
		lines:   make(map[string]*CartLine),
	}
}

func (c *Cart) Owner() string {
	return c.owner
}

func (c *Cart) Pricing() Pricing {
	return c.pricing
}

// AddLine adds qty units of p. An existing line for p.ID is incremented,
// its product snapshot is kept as first added.
func (c *Cart) AddLine(p Product, qty int) error {
	if p.ID == "" {
		return ErrEmptyProductID
	}
	if qty < 1 {
		return fmt.Errorf("add %s: %w", p.ID, ErrInvalidQuantity)
	}

	c.mu.Lock()
	kind := EventLineUpdated
	if line, ok := c.lines[p.ID]; ok {
		line.Quantity += qty
	} else {
		c.lines[p.ID] = &CartLine{Product: p, Quantity: qty}
		c.order = append(c.order, p.ID)
		kind = EventLineAdded
	}
	count := len(c.lines)
	c.mu.Unlock()

	c.emit(CartEvent{Kind: kind, ProductID: p.ID, LineCount: count})
	return nil
}

// RemoveLine reports whether a line was removed; an absent id is a no-op.
func (c *Cart) RemoveLine(id string) bool {
	c.mu.Lock()
	removed := c.removeLocked(id)
	count := len(c.lines)
	c.mu.Unlock()

	if removed {
		c.emit(CartEvent{Kind: EventLineRemoved, ProductID: id, LineCount: count})
	}
	return removed
}

// SetQuantity overwrites the quantity of an existing line. Quantities
// below 1 remove the line.
func (c *Cart) SetQuantity(id string, qty int) error {
	if qty < 1 {
		c.RemoveLine(id)
		return nil
	}

	c.mu.Lock()
	line, ok := c.lines[id]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("set quantity %s: %w", id, ErrLineNotFound)
	}
	line.Quantity = qty
	count := len(c.lines)
	c.mu.Unlock()

	c.emit(CartEvent{Kind: EventLineUpdated, ProductID: id, LineCount: count})
	return nil
}

func (c *Cart) Clear() {
	c.mu.Lock()
	c.lines = make(map[string]*CartLine)
	c.order = nil
	c.mu.Unlock()

	c.emit(CartEvent{Kind: EventCleared})
}

func (c *Cart) Totals() Totals {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.totalsLocked()
}

// Snapshot returns line copies and totals taken under a single lock.
func (c *Cart) Snapshot() ([]CartLine, Totals) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.linesLocked(), c.totalsLocked()
}

// totalsLocked keeps every amount at the currency minor unit.
func (c *Cart) totalsLocked() Totals {
	subtotal := ZeroMoney(c.pricing.Currency)
	for _, id := range c.order {
		subtotal = subtotal.Add(c.lines[id].Amount(c.pricing))
	}
	subtotal = subtotal.Round()
	tax := subtotal.ApplyRate(c.pricing.TaxRate)

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

// LineCount is the number of distinct products, not the sum of quantities.
func (c *Cart) LineCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.lines)
}

func (c *Cart) IsEmpty() bool {
	return c.LineCount() == 0
}

func (c *Cart) Quantity(id string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if line, ok := c.lines[id]; ok {
		return line.Quantity
	}
	return 0
}

func (c *Cart) Line(id string) (CartLine, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	line, ok := c.lines[id]
	if !ok {
		return CartLine{}, false
	}
	return *line, true
}

// Lines returns copies of the lines in insertion order.
func (c *Cart) Lines() []CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.linesLocked()
}

func (c *Cart) linesLocked() []CartLine {
	lines := make([]CartLine, 0, len(c.order))
	for _, id := range c.order {
		lines = append(lines, *c.lines[id])
	}
	return lines
}

// Subscribe registers fn for change events and returns a func that removes it.
// fn runs synchronously on the mutating goroutine after the cart lock is released.
func (c *Cart) Subscribe(fn func(CartEvent)) func() {
	c.mu.Lock()
	c.listenerID++
	id := c.listenerID
	c.listeners = append(c.listeners, listener{id: id, fn: fn})
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		for i, l := range c.listeners {
			if l.id == id {
				c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
				return
			}
		}
	}
}

func (c *Cart) removeLocked(id string) bool {
	if _, ok := c.lines[id]; !ok {
		return false
	}
	delete(c.lines, id)

	for i, orderedID := range c.order {
		if orderedID == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

func (c *Cart) emit(event CartEvent) {
	c.mu.Lock()
	fns := make([]func(CartEvent), 0, len(c.listeners))
	for _, l := range c.listeners {
		fns = append(fns, l.fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(event)
	}
}
