package sink

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

type RecordedItem struct {
	Product  string
	Quantity int
	Price    decimal.Decimal
}

// RecordedOrder is an accepted order. Total is recomputed from the items;
// DeclaredTotal is what the client sent.
type RecordedOrder struct {
	Number        string
	Customer      string
	CustomerCode  string
	Items         []RecordedItem
	Total         decimal.Decimal
	DeclaredTotal decimal.Decimal
	ReceivedAt    time.Time
}

type Journal interface {
	Record(ctx context.Context, order RecordedOrder) error
}

type MemoryJournal struct {
	mu     sync.Mutex
	orders []RecordedOrder
}

func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{}
}

func (j *MemoryJournal) Record(_ context.Context, order RecordedOrder) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.orders = append(j.orders, order)
	return nil
}

func (j *MemoryJournal) Orders() []RecordedOrder {
	j.mu.Lock()
	defer j.mu.Unlock()

	return append([]RecordedOrder(nil), j.orders...)
}
