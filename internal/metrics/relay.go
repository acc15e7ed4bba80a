package metrics

import (
	"time"

	"github.com/goodnatureofminers/btcrelay/internal/relay/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	relayOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "relay",
		Name:      "operations_total",
		Help:      "Count of relay operations.",
	}, []string{"operation", "network", "status"})
	relayOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "relay",
		Name:      "operation_duration_seconds",
		Help:      "Duration of relay operations.",
		Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
	}, []string{"operation", "network", "status"})
	relayBestHeight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "relay",
		Name:      "best_height",
		Help:      "Height of the canonical tip.",
	}, []string{"network"})
	relayEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "relay",
		Name:      "events_total",
		Help:      "Count of relay events by kind.",
	}, []string{"network", "kind"})
)

// Relay tracks relay operations, the best height and emitted events.
type Relay struct {
	network string
}

// NewRelay constructs a Relay collector for network.
func NewRelay(network model.Network) *Relay {
	return &Relay{network: orUnknown(network)}
}

// Observe records an operation outcome and duration.
func (m Relay) Observe(operation string, err error, started time.Time) {
	s := status(err)
	relayOperationsTotal.WithLabelValues(operation, m.network, s).Inc()
	relayOperationDuration.WithLabelValues(operation, m.network, s).Observe(time.Since(started).Seconds())
}

// SetBestHeight records the canonical tip height.
func (m Relay) SetBestHeight(height uint32) {
	relayBestHeight.WithLabelValues(m.network).Set(float64(height))
}

// IncEvent counts one emitted event.
func (m Relay) IncEvent(kind model.EventKind) {
	relayEventsTotal.WithLabelValues(m.network, orUnknown(kind)).Inc()
}
