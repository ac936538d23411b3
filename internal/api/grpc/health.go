package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"vehicle-rental-backend/internal/api/grpc/interceptor"
	"vehicle-rental-backend/internal/logger"
	"vehicle-rental-backend/internal/repository"
)

// RentalServiceName is the service name reported by the health endpoint.
const RentalServiceName = "rental"

const pingTimeout = 2 * time.Second

// HealthHandler publishes store readiness through grpc.health.v1.Health.
type HealthHandler struct {
	server  *health.Server
	checker repository.HealthChecker
}

func NewHealthHandler(checker repository.HealthChecker) *HealthHandler {
	h := &HealthHandler{server: health.NewServer(), checker: checker}
	h.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return h
}

func (h *HealthHandler) set(st healthpb.HealthCheckResponse_ServingStatus) {
	h.server.SetServingStatus("", st)
	h.server.SetServingStatus(RentalServiceName, st)
}

// Refresh pings the store once and updates the serving status.
func (h *HealthHandler) Refresh(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := h.checker.Ping(ctx); err != nil {
		logger.Warn("Store ping failed", "error", err)
		h.set(healthpb.HealthCheckResponse_NOT_SERVING)
		return
	}
	h.set(healthpb.HealthCheckResponse_SERVING)
}

// Run refreshes the status every interval until ctx is done.
func (h *HealthHandler) Run(ctx context.Context, interval time.Duration) {
	h.Refresh(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Refresh(ctx)
		}
	}
}

// Shutdown reports NOT_SERVING to every watcher and ignores later updates.
func (h *HealthHandler) Shutdown() {
	h.server.Shutdown()
}

// NewServer builds the gRPC server with health and reflection registered.
func NewServer(h *HealthHandler) *grpc.Server {
	s := grpc.NewServer(
		grpc.UnaryInterceptor(interceptor.NewLoggingInterceptor().Unary()),
	)
	healthpb.RegisterHealthServer(s, h.server)
	reflection.Register(s)
	return s
}
