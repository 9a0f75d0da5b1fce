package cmd

import (
	"errors"
	"fmt"
	"net"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the name reported to gRPC health checks
const ServiceName = "apploto"

// HealthServer serves the standard gRPC health checking protocol for
// orchestrators that probe over gRPC
type HealthServer struct {
	addr   string
	server *grpc.Server
	health *health.Server
}

// NewHealthServer creates a health server that starts out NOT_SERVING
func NewHealthServer(addr string) *HealthServer {
	h := &HealthServer{
		addr:   addr,
		server: grpc.NewServer(),
		health: health.NewServer(),
	}
	h.SetServing(false)
	healthpb.RegisterHealthServer(h.server, h.health)
	return h
}

// SetServing updates the status of the overall server and the apploto service
func (h *HealthServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(ServiceName, status)
}

// Start listens and serves until Stop
func (h *HealthServer) Start() error {
	lis, err := net.Listen("tcp", h.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", h.addr, err)
	}
	log.WithField("addr", h.addr).Info("gRPC health server listening")
	if err := h.server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("grpc health server failed: %w", err)
	}
	return nil
}

// Stop drains and stops the server
func (h *HealthServer) Stop() {
	h.health.Shutdown()
	h.server.GracefulStop()
}
