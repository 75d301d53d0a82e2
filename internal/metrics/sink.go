package metrics

import "github.com/prometheus/client_golang/prometheus"

type SinkMetrics struct {
	accepted prometheus.Counter
	rejected *prometheus.CounterVec
}

func NewSinkMetrics(registerer prometheus.Registerer) *SinkMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &SinkMetrics{
		accepted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "order_sink_accepted_total",
			Help: "Total number of orders recorded by the sink",
		}),
		rejected: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "order_sink_rejected_total",
			Help: "Orders rejected by the sink, by reason",
		}, []string{"reason"}),
	}
}

func (m *SinkMetrics) RecordAccepted() {
	if m == nil {
		return
	}
	m.accepted.Inc()
}

func (m *SinkMetrics) RecordRejected(reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(reason).Inc()
}
