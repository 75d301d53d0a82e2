package repository_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/nikolayk812/cartengine/internal/domain"
	"github.com/nikolayk812/cartengine/internal/port"
	"github.com/nikolayk812/cartengine/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"golang.org/x/text/currency"
)

func startPostgres(ctx context.Context) (*postgres.PostgresContainer, string, error) {
	postgresContainer, err := postgres.Run(ctx, "postgres:17.6-alpine3.22",
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, "", fmt.Errorf("postgres.Run: %w", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", fmt.Errorf("pc.ConnectionString: %w", err)
	}

	if err := repository.RunMigrations(connStr); err != nil {
		return nil, "", fmt.Errorf("repository.RunMigrations: %w", err)
	}

	return postgresContainer, connStr, nil
}

func newRedisSlots(t *testing.T) (port.SlotStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return repository.NewRedisSlots(client), mr
}

func testPricing() domain.Pricing {
	return domain.Pricing{
		Currency: currency.BRL,
		TaxRate:  decimal.Zero,
	}
}

func randomProduct() domain.Product {
	return domain.Product{
		ID:        gofakeit.UUID(),
		Name:      gofakeit.ProductName(),
		UnitPrice: decimal.NewFromFloat(gofakeit.Price(1, 100)).Round(2),
		Category:  gofakeit.RandomString([]string{"cervejas", "doces", "refrigerantes", "salgados", "biscoitos"}),
		ImageRef:  gofakeit.Word() + ".png",
	}
}

func randomCart(owner string, lines int) *domain.Cart {
	cart := domain.NewCart(owner, testPricing())
	for range lines {
		_ = cart.AddLine(randomProduct(), gofakeit.Number(1, 10))
	}
	return cart
}

func assertSameLines(t *testing.T, expected, actual *domain.Cart) {
	t.Helper()

	decimalComparer := cmp.Comparer(func(x, y decimal.Decimal) bool {
		return x.Equal(y)
	})

	diff := cmp.Diff(expected.Lines(), actual.Lines(), decimalComparer)
	assert.Empty(t, diff)
}
