// Package sink implements the HTTP endpoint that receives submitted orders.
package sink

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/nikolayk812/cartengine/internal/metrics"
	"github.com/nikolayk812/cartengine/internal/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

const (
	OrderPath = "/gerar_pdf"

	maxBodyBytes    = 1 << 20
	acceptedMessage = "Pedido processado com sucesso"
)

type Config struct {
	Journal  Journal
	Metrics  *metrics.SinkMetrics
	Gatherer prometheus.Gatherer
	Logger   *log.Entry
	Now      func() time.Time
}

type handler struct {
	journal Journal
	metrics *metrics.SinkMetrics
	logger  *log.Entry
	now     func() time.Time
}

func NewRouter(cfg Config) http.Handler {
	h := &handler{
		journal: cfg.Journal,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
		now:     cfg.Now,
	}
	if h.journal == nil {
		h.journal = NewMemoryJournal()
	}
	if h.logger == nil {
		h.logger = log.WithField("component", "order_sink")
	}
	if h.now == nil {
		h.now = time.Now
	}

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.Post(OrderPath, h.submitOrder)
	r.Options(OrderPath, func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}

func (h *handler) submitOrder(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.WithField("request_id", middleware.GetReqID(r.Context()))

	var envelope wire.OrderEnvelope
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&envelope); err != nil {
		h.metrics.RecordRejected("invalid_json")
		logger.WithError(err).Warn("order body rejected")
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	order, err := parseOrder(envelope.Order, h.now())
	if err != nil {
		h.metrics.RecordRejected("invalid_order")
		logger.WithError(err).Warn("order rejected")
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	logger = logger.WithFields(log.Fields{"order_id": order.Number, "customer": order.CustomerCode})
	logger.Info("processing order")

	// the declared total includes tax, the item sum does not
	if order.DeclaredTotal.Round(2).LessThan(order.Total.Round(2)) {
		logger.WithFields(log.Fields{
			"declared": order.DeclaredTotal.String(),
			"computed": order.Total.String(),
		}).Warn("declared total below item sum")
	}

	if err := h.journal.Record(r.Context(), order); err != nil {
		h.metrics.RecordRejected("journal")
		logger.WithError(err).Error("order not recorded")
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.metrics.RecordAccepted()
	respondJSON(w, http.StatusOK, wire.Ack{Success: true, Message: acceptedMessage})
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		next.ServeHTTP(w, r)
	})
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Warn("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, wire.Ack{Success: false, Error: message})
}

// Serve runs the sink on addr until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, addr string, h http.Handler, logger *log.Entry) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("order sink listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping order sink")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("order sink shutdown with error")
		}
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
