// Package metrics exposes Prometheus collectors for checkout and the order sink.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSucceeded     = "succeeded"
	OutcomeLocalFallback = "local_fallback"
	OutcomeSkipped       = "skipped"
)

type CheckoutMetrics struct {
	attempts prometheus.Counter
	outcomes *prometheus.CounterVec
	duration prometheus.Histogram
}

func NewCheckoutMetrics(registerer prometheus.Registerer) *CheckoutMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &CheckoutMetrics{
		attempts: registerCounter(registerer, prometheus.CounterOpts{
			Name: "cart_checkout_attempts_total",
			Help: "Total number of checkout attempts that reached submission",
		}),
		outcomes: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "cart_checkout_outcomes_total",
			Help: "Checkout attempts by outcome",
		}, []string{"outcome"}),
		duration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "cart_checkout_duration_seconds",
			Help:    "Duration of order submission in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Methods are safe on a nil receiver so metrics stay optional.

func (m *CheckoutMetrics) RecordAttempt() {
	if m == nil {
		return
	}
	m.attempts.Inc()
}

func (m *CheckoutMetrics) RecordOutcome(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(outcome).Inc()
	if outcome != OutcomeSkipped {
		m.duration.Observe(duration.Seconds())
	}
}
