// Package healthHandler exposes worker health over the standard gRPC health protocol.
package healthHandler

import (
	"context"
	"time"

	"files-manager/internal/service/appService"
	"files-manager/pkg/logger"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const ServiceName = "files-manager.worker"

type HealthHandler struct {
	server *health.Server
	checks map[string]appService.Pinger
}

func New(checks map[string]appService.Pinger) *HealthHandler {
	return &HealthHandler{server: health.NewServer(), checks: checks}
}

func (h *HealthHandler) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.server)
}

// Probe pings every dependency and publishes SERVING only when all respond.
func (h *HealthHandler) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			logger.GetLogger(ctx).Warn("health check failed", zap.String("dependency", name), zap.Error(err))
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(ServiceName, status)
	return status
}

// Run probes every interval until ctx ends, then marks the service as shutting down.
func (h *HealthHandler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	h.Probe(ctx)
	for {
		select {
		case <-ctx.Done():
			h.server.Shutdown()
			return
		case <-ticker.C:
			h.Probe(ctx)
		}
	}
}
