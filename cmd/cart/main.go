// Command cart is an interactive console front end for the cart engine.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/nikolayk812/cartengine/internal/catalog"
	"github.com/nikolayk812/cartengine/internal/checkout"
	"github.com/nikolayk812/cartengine/internal/config"
	"github.com/nikolayk812/cartengine/internal/directory"
	"github.com/nikolayk812/cartengine/internal/metrics"
	"github.com/nikolayk812/cartengine/internal/repository"
	"github.com/nikolayk812/cartengine/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	cfg.SetupLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("cart stopped with error")
	}
}

func run(ctx context.Context, cfg config.Config) error {
	index, err := catalog.LoadFile(cfg.CatalogFile)
	if err != nil {
		return err
	}

	users, err := directory.LoadFile(cfg.UsersFile)
	if err != nil {
		return err
	}

	slots, closeSlots, err := config.OpenSlots(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSlots()

	log.WithFields(log.Fields{
		"products": len(index.Search("", catalog.AllCategories)),
		"users":    users.Len(),
		"storage":  cfg.Storage,
		"endpoint": cfg.OrderEndpoint,
	}).Info("cart engine ready")

	persistence := repository.NewCartPersistence(slots, cfg.StoragePrefix, cfg.Pricing(), nil)
	sender := checkout.NewHTTPSender(cfg.OrderEndpoint, checkout.WithTimeout(cfg.CheckoutTimeout))
	submitter := checkout.NewSubmitter(sender, persistence,
		checkout.WithBusyIndicator(consoleBusy{out: os.Stdout}),
		checkout.WithMetrics(metrics.NewCheckoutMetrics(prometheus.DefaultRegisterer)),
	)

	shop := service.NewShop(index, users, persistence, submitter, nil)

	r := &repl{
		shop:    shop,
		index:   index,
		pricing: cfg.Pricing(),
		locale:  cfg.Locale,
		out:     os.Stdout,
	}
	shop.Subscribe(r.badge)

	return r.run(ctx, os.Stdin)
}
