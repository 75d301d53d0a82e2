package sink_test

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nikolayk812/cartengine/internal/checkout"
	"github.com/nikolayk812/cartengine/internal/domain"
	"github.com/nikolayk812/cartengine/internal/metrics"
	"github.com/nikolayk812/cartengine/internal/repository"
	"github.com/nikolayk812/cartengine/internal/sink"
	"github.com/nikolayk812/cartengine/internal/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
)

type failingJournal struct{}

func (failingJournal) Record(context.Context, sink.RecordedOrder) error {
	return errors.New("journal unavailable")
}

func newRouter(t *testing.T, journal sink.Journal) http.Handler {
	t.Helper()

	registry := prometheus.NewRegistry()
	logger, _ := test.NewNullLogger()

	return sink.NewRouter(sink.Config{
		Journal:  journal,
		Metrics:  metrics.NewSinkMetrics(registry),
		Gatherer: registry,
		Logger:   logger.WithField("component", "test"),
	})
}

func post(t *testing.T, h http.Handler, body string) (*httptest.ResponseRecorder, wire.Ack) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, sink.OrderPath, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	var ack wire.Ack
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ack))
	return rec, ack
}

const validOrder = `{"pedido":{"numero":"ORD-1","cliente":"Maria","codigo_cliente":"cli01",
"itens":[{"produto":"Coxinha","quantidade":2,"preco":6.5},{"produto":"Guaraná","quantidade":1,"preco":5}],"total":18}}`

func TestSubmitOrder_Accepted(t *testing.T) {
	journal := sink.NewMemoryJournal()
	h := newRouter(t, journal)

	rec, ack := post(t, h, validOrder)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, ack.Success)
	assert.Equal(t, "Pedido processado com sucesso", ack.Message)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	orders := journal.Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, "ORD-1", orders[0].Number)
	assert.Equal(t, "cli01", orders[0].CustomerCode)
	assert.Len(t, orders[0].Items, 2)
	assert.Equal(t, "18", orders[0].Total.String())
	assert.False(t, orders[0].ReceivedAt.IsZero())
}

func TestSubmitOrder_Rejected(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantError string
	}{
		{
			name:      "invalid json: error",
			body:      `{`,
			wantError: "invalid JSON body",
		},
		{
			name:      "missing number: error",
			body:      `{"pedido":{"cliente":"Maria","itens":[{"produto":"A","quantidade":1,"preco":1}]}}`,
			wantError: "invalid order: numero is empty",
		},
		{
			name:      "missing customer: error",
			body:      `{"pedido":{"numero":"ORD-1","itens":[{"produto":"A","quantidade":1,"preco":1}]}}`,
			wantError: "invalid order: cliente is empty",
		},
		{
			name:      "no items: error",
			body:      `{"pedido":{"numero":"ORD-1","cliente":"Maria","itens":[]}}`,
			wantError: "invalid order: itens is empty",
		},
		{
			name:      "zero quantity: error",
			body:      `{"pedido":{"numero":"ORD-1","cliente":"Maria","itens":[{"produto":"A","quantidade":0,"preco":1}]}}`,
			wantError: "invalid order: itens[0] quantidade must be at least 1",
		},
		{
			name:      "negative price: error",
			body:      `{"pedido":{"numero":"ORD-1","cliente":"Maria","itens":[{"produto":"A","quantidade":1,"preco":-2}]}}`,
			wantError: "invalid order: itens[0] preco is negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			journal := sink.NewMemoryJournal()

			rec, ack := post(t, newRouter(t, journal), tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, ack.Success)
			assert.Equal(t, tt.wantError, ack.Error)
			assert.Empty(t, journal.Orders())
		})
	}
}

func TestSubmitOrder_DeclaredTotalWarning(t *testing.T) {
	tests := []struct {
		name     string
		total    string
		wantWarn bool
	}{
		{name: "total with tax: ok", total: "19.80", wantWarn: false},
		{name: "total equal to items: ok", total: "18", wantWarn: false},
		{name: "total below items: warn", total: "17.99", wantWarn: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, hook := test.NewNullLogger()
			h := sink.NewRouter(sink.Config{
				Journal: sink.NewMemoryJournal(),
				Logger:  logger.WithField("component", "test"),
			})

			body := `{"pedido":{"numero":"ORD-1","cliente":"Maria","codigo_cliente":"cli01",
"itens":[{"produto":"Coxinha","quantidade":2,"preco":6.5},{"produto":"Guaraná","quantidade":1,"preco":5}],"total":` + tt.total + `}}`
			rec, ack := post(t, h, body)
			require.Equal(t, http.StatusOK, rec.Code)
			require.True(t, ack.Success)

			warned := false
			for _, e := range hook.AllEntries() {
				if e.Message == "declared total below item sum" {
					warned = true
				}
			}
			assert.Equal(t, tt.wantWarn, warned)
		})
	}
}

func TestSubmitOrder_JournalFailure(t *testing.T) {
	rec, ack := post(t, newRouter(t, failingJournal{}), validOrder)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, ack.Success)
	assert.Equal(t, "journal unavailable", ack.Error)
}

func TestPreflightAndHealth(t *testing.T) {
	h := newRouter(t, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, sink.OrderPath, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

// The sender and the sink agree on the wire format end to end.
func TestSenderToSink(t *testing.T) {
	journal := sink.NewMemoryJournal()
	srv := httptest.NewServer(newRouter(t, journal))
	defer srv.Close()

	pricing := domain.Pricing{Currency: currency.BRL, TaxRate: decimal.RequireFromString("0.10")}
	persistence := repository.NewCartPersistence(repository.NewMemorySlots(), "", pricing, nil)
	sender := checkout.NewHTTPSender(srv.URL+sink.OrderPath, checkout.WithHTTPClient(srv.Client()))
	submitter := checkout.NewSubmitter(sender, persistence)

	session := domain.NewUserSession("cli01", "Maria")
	cart := domain.NewCart(session.Code, pricing)
	require.NoError(t, cart.AddLine(domain.Product{ID: "p1", Name: "Coxinha", UnitPrice: decimal.RequireFromString("10.00")}, 5))

	result, err := submitter.Checkout(t.Context(), session, cart)
	require.NoError(t, err)
	assert.Equal(t, checkout.StateSucceeded, result.State)
	assert.True(t, cart.IsEmpty())

	orders := journal.Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, result.OrderID, orders[0].Number)
	assert.Equal(t, "50", orders[0].Total.String())
	assert.Equal(t, "55", orders[0].DeclaredTotal.String())
}

func TestServe_StopsOnCancel(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := lis.Addr().String()
	require.NoError(t, lis.Close())

	ctx, cancel := context.WithCancel(t.Context())
	logger, _ := test.NewNullLogger()

	done := make(chan error, 1)
	go func() {
		done <- sink.Serve(ctx, addr, newRouter(t, nil), logger.WithField("component", "test"))
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	http.DefaultClient.CloseIdleConnections()
}
