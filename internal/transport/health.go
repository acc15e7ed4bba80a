package transport

import (
	"context"
	"time"

	"github.com/goodnatureofminers/btcrelay/internal/clock"
	"go.uber.org/zap"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the gRPC health service name of the relay.
const ServiceName = "btcrelay.v1.Relay"

// HealthReporter mirrors relay initialization into a gRPC health server.
type HealthReporter struct {
	relay    Relay
	server   *health.Server
	interval time.Duration
	logger   *zap.Logger
}

// NewHealthReporter builds a reporter that polls relay every interval.
func NewHealthReporter(relay Relay, server *health.Server, interval time.Duration, logger *zap.Logger) *HealthReporter {
	return &HealthReporter{
		relay:    relay,
		server:   server,
		interval: interval,
		logger:   logger.Named("health"),
	}
}

// Run updates the serving status until ctx is canceled, then marks the
// server as shutting down.
func (h *HealthReporter) Run(ctx context.Context) {
	last := healthpb.HealthCheckResponse_UNKNOWN
	for {
		st := h.Check()
		if st != last {
			h.logger.Info("health status changed", zap.Stringer("status", st))
			last = st
		}
		if err := clock.SleepWithContext(ctx, h.interval); err != nil {
			h.server.Shutdown()
			return
		}
	}
}

// Check sets and returns the current status.
func (h *HealthReporter) Check() healthpb.HealthCheckResponse_ServingStatus {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if h.relay.Initialized() {
		st = healthpb.HealthCheckResponse_SERVING
	}
	h.server.SetServingStatus("", st)
	h.server.SetServingStatus(ServiceName, st)
	return st
}
