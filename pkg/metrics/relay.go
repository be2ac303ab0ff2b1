package metrics

import "github.com/prometheus/client_golang/prometheus"

// RelayMetrics tracks fan-out to live SSE subscribers.
type RelayMetrics struct {
	subscribers prometheus.Gauge
	published   prometheus.Counter
	deliveries  prometheus.Counter
	failures    prometheus.Counter
}

// NewRelayMetrics registers the relay metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewRelayMetrics(reg prometheus.Registerer) *RelayMetrics {
	if reg == nil {
		return &RelayMetrics{}
	}
	subscribers := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "relay_subscribers",
		Help: "Currently connected SSE subscribers.",
	})
	published := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "relay_events_published_total",
		Help: "Events accepted for fan-out.",
	})
	deliveries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "relay_deliveries_total",
		Help: "Frames successfully written to a subscriber.",
	})
	failures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "relay_delivery_failures_total",
		Help: "Frames that could not be written to a subscriber.",
	})
	reg.MustRegister(subscribers, published, deliveries, failures)
	return &RelayMetrics{
		subscribers: subscribers,
		published:   published,
		deliveries:  deliveries,
		failures:    failures,
	}
}

// SetSubscribers reports the current subscriber count.
func (m *RelayMetrics) SetSubscribers(n int) {
	if m == nil || m.subscribers == nil {
		return
	}
	m.subscribers.Set(float64(n))
}

// ObservePublish records one published event and its delivery outcome.
func (m *RelayMetrics) ObservePublish(delivered, failed int) {
	if m == nil || m.published == nil {
		return
	}
	m.published.Inc()
	m.deliveries.Add(float64(delivered))
	m.failures.Add(float64(failed))
}
