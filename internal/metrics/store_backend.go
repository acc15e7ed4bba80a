package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storeBackendOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "store_backend",
		Name:      "operations_total",
		Help:      "Count of durable store operations.",
	}, []string{"operation", "status"})
	storeBackendOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "store_backend",
		Name:      "operation_duration_seconds",
		Help:      "Duration of durable store operations.",
		Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 5},
	}, []string{"operation", "status"})
)

// StoreBackend tracks the bbolt backend of the header store.
type StoreBackend struct{}

// NewStoreBackend creates a StoreBackend collector.
func NewStoreBackend() *StoreBackend {
	return &StoreBackend{}
}

// Observe records duration and status of a backend operation.
func (m StoreBackend) Observe(operation string, err error, started time.Time) {
	s := status(err)
	storeBackendOperationsTotal.WithLabelValues(operation, s).Inc()
	storeBackendOperationDuration.WithLabelValues(operation, s).Observe(time.Since(started).Seconds())
}
