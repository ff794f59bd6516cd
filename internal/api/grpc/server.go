// Package grpc serves the standard gRPC health service next to the HTTP API.
package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"rentshare-backend/internal/api/grpc/interceptor"
	"rentshare-backend/internal/logger"
)

// ServiceName is the health service name clients can probe besides "".
const ServiceName = "rentshare.v1.Backend"

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthServer struct {
	server   *grpc.Server
	health   *health.Server
	store    Pinger
	interval time.Duration
}

func NewHealthServer(store Pinger, interval time.Duration) *HealthServer {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	srv := grpc.NewServer(grpc.UnaryInterceptor(interceptor.Unary()))
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	return &HealthServer{server: srv, health: hs, store: store, interval: interval}
}

// Server exposes the underlying *grpc.Server for Serve and GracefulStop.
func (h *HealthServer) Server() *grpc.Server { return h.server }

// Check pings the store once and publishes the result.
func (h *HealthServer) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, h.interval/2)
	defer cancel()

	st := healthpb.HealthCheckResponse_SERVING
	if err := h.store.Ping(ctx); err != nil {
		logger.Warn("Store ping failed", "error", err)
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.health.SetServingStatus("", st)
	h.health.SetServingStatus(ServiceName, st)
	return st
}

// Watch re-checks the store until ctx is done, then marks everything as
// not serving.
func (h *HealthServer) Watch(ctx context.Context) {
	h.Check(ctx)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.health.Shutdown()
			return
		case <-ticker.C:
			h.Check(ctx)
		}
	}
}
