// Command order-sink receives submitted orders over HTTP and keeps them in memory.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/nikolayk812/cartengine/internal/config"
	"github.com/nikolayk812/cartengine/internal/metrics"
	"github.com/nikolayk812/cartengine/internal/sink"
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

	logger := log.WithField("component", "order_sink")

	router := sink.NewRouter(sink.Config{
		Journal:  sink.NewMemoryJournal(),
		Metrics:  metrics.NewSinkMetrics(prometheus.DefaultRegisterer),
		Gatherer: prometheus.DefaultGatherer,
		Logger:   logger,
	})

	if err := sink.Serve(ctx, cfg.SinkAddr, router, logger); err != nil {
		logger.WithError(err).Fatal("order sink stopped with error")
	}

	logger.Info("order sink stopped")
}
