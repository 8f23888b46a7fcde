package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pushevent"

// Metrics holds the dispatcher's collectors.
type Metrics struct {
	Messages             *prometheus.CounterVec
	Published            prometheus.Counter
	Deliveries           prometheus.Counter
	DeliveryFailures     prometheus.Counter
	DuplicateConnections prometheus.Counter
	RenderPanics         prometheus.Counter
	Subscribers          prometheus.Gauge
	Paths                prometheus.Gauge
	QueueDepth           prometheus.Gauge
	QueueHighWater       prometheus.Gauge

	// Transport
	Sessions        prometheus.Gauge
	PublishRequests *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
// A nil reg leaves them unregistered, which is convenient in tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "control_messages_total",
			Help:      "Control messages processed by the dispatcher, by kind.",
		}, []string{"kind"}),
		Published: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Events routed by the dispatcher.",
		}),
		Deliveries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Rendered events handed to a subscriber's outbound channel.",
		}),
		DeliveryFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_failures_total",
			Help:      "Deliveries that failed and dropped the subscriber.",
		}),
		DuplicateConnections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_connections_total",
			Help:      "Connect messages rejected because the ID was already registered.",
		}),
		RenderPanics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_panics_total",
			Help:      "Events dropped because their payload panicked while rendering.",
		}),
		Subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "subscribers",
			Help:      "Connections currently registered.",
		}),
		Paths: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "paths",
			Help:      "Resource paths with at least one subscriber.",
		}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_depth",
			Help:      "Control messages waiting in the dispatcher queue.",
		}),
		QueueHighWater: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_high_water",
			Help:      "Deepest the dispatcher queue has been since start.",
		}),
		Sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_sessions",
			Help:      "Open WebSocket subscriber sessions.",
		}),
		PublishRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_requests_total",
			Help:      "HTTP publish requests, by response code.",
		}, []string{"code"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.Messages,
			m.Published,
			m.Deliveries,
			m.DeliveryFailures,
			m.DuplicateConnections,
			m.RenderPanics,
			m.Subscribers,
			m.Paths,
			m.QueueDepth,
			m.QueueHighWater,
			m.Sessions,
			m.PublishRequests,
		)
	}

	return m
}
