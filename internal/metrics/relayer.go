package metrics

import (
	"time"

	"github.com/goodnatureofminers/btcrelay/internal/relay/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	relayerFetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "relayer",
		Name:      "fetch_total",
		Help:      "Count of attempts to fetch missing headers from the node.",
	}, []string{"network", "status"})

	relayerFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "relayer",
		Name:      "fetch_duration_seconds",
		Help:      "Duration of fetching missing headers.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"network", "status"})

	relayerSubmitTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "relayer",
		Name:      "submit_total",
		Help:      "Count of header batches submitted to the relay.",
	}, []string{"network", "status"})

	relayerSubmitDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "relayer",
		Name:      "submit_duration_seconds",
		Help:      "Duration of submitting a header batch.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"network", "status"})

	relayerSubmitSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "relayer",
		Name:      "submit_batch_size",
		Help:      "Number of headers per submitted batch.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	}, []string{"network"})

	relayerNodeHeight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "relayer",
		Name:      "node_height",
		Help:      "Best height reported by the node.",
	}, []string{"network"})
)

// Relayer tracks the node follower.
type Relayer struct {
	network string
}

// NewRelayer constructs a Relayer collector.
func NewRelayer(network model.Network) *Relayer {
	return &Relayer{network: orUnknown(network)}
}

// ObserveFetch records a fetch attempt outcome and duration.
func (m Relayer) ObserveFetch(err error, started time.Time) {
	s := status(err)
	relayerFetchTotal.WithLabelValues(m.network, s).Inc()
	relayerFetchDuration.WithLabelValues(m.network, s).Observe(time.Since(started).Seconds())
}

// ObserveSubmit records one batch submission.
func (m Relayer) ObserveSubmit(err error, headers int, started time.Time) {
	s := status(err)
	relayerSubmitTotal.WithLabelValues(m.network, s).Inc()
	relayerSubmitDuration.WithLabelValues(m.network, s).Observe(time.Since(started).Seconds())
	relayerSubmitSize.WithLabelValues(m.network).Observe(float64(headers))
}

// SetNodeHeight records the node's best height.
func (m Relayer) SetNodeHeight(height uint32) {
	relayerNodeHeight.WithLabelValues(m.network).Set(float64(height))
}
