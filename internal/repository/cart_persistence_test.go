package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/nikolayk812/cartengine/internal/domain"
	"github.com/nikolayk812/cartengine/internal/port"
	"github.com/nikolayk812/cartengine/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSlots struct {
	port.SlotStore
	err error
}

func (f failingSlots) Get(context.Context, string) ([]byte, error) {
	return nil, f.err
}

func TestCartPersistence_RoundTrip(t *testing.T) {
	store, _ := newRedisSlots(t)
	persistence := repository.NewCartPersistence(store, "", testPricing(), nil)

	tests := []struct {
		name  string
		lines int
	}{
		{name: "empty cart: ok", lines: 0},
		{name: "single line: ok", lines: 1},
		{name: "many lines: ok", lines: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := t.Context()
			code := gofakeit.Username()
			cart := randomCart(code, tt.lines)

			require.NoError(t, persistence.Save(ctx, code, cart))

			loaded, err := persistence.Load(ctx, code)
			require.NoError(t, err)

			assert.Equal(t, code, loaded.Owner())
			assert.Equal(t, cart.LineCount(), loaded.LineCount())
			assertSameLines(t, cart, loaded)
			assert.True(t, cart.Totals().Total.Equal(loaded.Totals().Total))
		})
	}
}

func TestCartPersistence_Key(t *testing.T) {
	persistence := repository.NewCartPersistence(repository.NewMemorySlots(), "", testPricing(), nil)
	assert.Equal(t, "comercial_soares_cart_abc", persistence.Key("abc"))

	custom := repository.NewCartPersistence(repository.NewMemorySlots(), "shop:", testPricing(), nil)
	assert.Equal(t, "shop:abc", custom.Key("abc"))
}

func TestCartPersistence_SaveOverwrites(t *testing.T) {
	ctx := t.Context()
	store := repository.NewMemorySlots()
	persistence := repository.NewCartPersistence(store, "", testPricing(), nil)

	cart := randomCart("u1", 3)
	require.NoError(t, persistence.Save(ctx, "u1", cart))

	cart.Clear()
	require.NoError(t, persistence.Save(ctx, "u1", cart))

	payload, err := store.Get(ctx, persistence.Key("u1"))
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(payload))
}

func TestCartPersistence_LoadAbsent(t *testing.T) {
	persistence := repository.NewCartPersistence(repository.NewMemorySlots(), "", testPricing(), nil)

	cart, err := persistence.Load(t.Context(), gofakeit.Username())
	require.NoError(t, err)
	assert.Zero(t, cart.LineCount())
}

func TestCartPersistence_LoadCorrupt(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "not json", payload: `{{{`},
		{name: "array", payload: `[]`},
		{name: "null", payload: `null`},
		{name: "truncated", payload: `{"p1":{"product":{"id":"p1","nome":"A","preco":1},"quantity":1}`},
		{name: "zero quantity", payload: `{"p1":{"product":{"id":"p1","nome":"A","preco":1},"quantity":0}}`},
		{name: "key mismatch", payload: `{"p1":{"product":{"id":"p2","nome":"A","preco":1},"quantity":1}}`},
		{name: "negative price", payload: `{"p1":{"product":{"id":"p1","nome":"A","preco":-1},"quantity":1}}`},
		{name: "duplicate key", payload: `{"p1":{"product":{"id":"p1","nome":"A","preco":1},"quantity":1},"p1":{"product":{"id":"p1","nome":"A","preco":1},"quantity":1}}`},
		{name: "trailing data", payload: `{} {}`},
	}

	for _, tt := range tests {
		t.Run(tt.name+": empty cart", func(t *testing.T) {
			ctx := t.Context()
			store := repository.NewMemorySlots()
			logger, hook := test.NewNullLogger()
			persistence := repository.NewCartPersistence(store, "", testPricing(), logger.WithField("component", "test"))

			require.NoError(t, store.Put(ctx, persistence.Key("u1"), []byte(tt.payload)))

			cart, err := persistence.Load(ctx, "u1")
			require.NoError(t, err)
			assert.Zero(t, cart.LineCount())

			require.Len(t, hook.Entries, 1)
			assert.ErrorIs(t, hook.LastEntry().Data["error"].(error), domain.ErrCorruptCart)
		})
	}
}

func TestCartPersistence_LoadStoreFailure(t *testing.T) {
	storeErr := errors.New("connection refused")
	persistence := repository.NewCartPersistence(failingSlots{err: storeErr}, "", testPricing(), nil)

	cart, err := persistence.Load(t.Context(), "u1")
	require.ErrorIs(t, err, storeErr)
	require.NotNil(t, cart)
	assert.Zero(t, cart.LineCount())
}

func TestCartPersistence_EmptyUserCode(t *testing.T) {
	persistence := repository.NewCartPersistence(repository.NewMemorySlots(), "", testPricing(), nil)

	err := persistence.Save(t.Context(), "", randomCart("", 1))
	require.EqualError(t, err, "userCode is empty")

	_, err = persistence.Load(t.Context(), "")
	require.EqualError(t, err, "userCode is empty")
}

func TestEncodeCart_Format(t *testing.T) {
	cart := domain.NewCart("u1", testPricing())
	require.NoError(t, cart.AddLine(domain.Product{
		ID:        "p2",
		Name:      "Coxinha",
		UnitPrice: decimal.RequireFromString("6.5"),
		Category:  "salgados",
		ImageRef:  "coxinha.png",
	}, 2))
	require.NoError(t, cart.AddLine(domain.Product{
		ID:        "p1",
		Name:      "Brigadeiro",
		UnitPrice: decimal.RequireFromString("2"),
		ImageRef:  "brigadeiro.png",
	}, 1))

	payload, err := repository.EncodeCart(cart)
	require.NoError(t, err)

	// insertion order, not key order
	want := `{"p2":{"product":{"id":"p2","nome":"Coxinha","preco":6.5,"categoria":"salgados","imagem":"coxinha.png"},"quantity":2},` +
		`"p1":{"product":{"id":"p1","nome":"Brigadeiro","preco":2,"imagem":"brigadeiro.png"},"quantity":1}}`
	assert.Equal(t, want, string(payload))

	decoded, err := repository.DecodeCart(payload, "u1", testPricing())
	require.NoError(t, err)
	assertSameLines(t, cart, decoded)
}

func TestDecodeCart_QuotedPrice(t *testing.T) {
	payload := `{"p1":{"product":{"id":"p1","nome":"A","preco":"3.25","imagem":"a.png"},"quantity":4}}`

	cart, err := repository.DecodeCart([]byte(payload), "u1", testPricing())
	require.NoError(t, err)

	assert.Equal(t, 4, cart.Quantity("p1"))
	assert.Equal(t, "13", cart.Totals().Subtotal.Amount.String())
}
