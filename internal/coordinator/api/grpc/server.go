package grpc

import (
	"context"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"

	"github.com/nemanja-m/scatter/internal/shared/config"
	"github.com/nemanja-m/scatter/internal/shared/logging"
	"github.com/nemanja-m/scatter/internal/shared/proto"
	"github.com/nemanja-m/scatter/internal/transport/remote"
)

// Server exposes the run's hub to the workers, next to the standard gRPC
// health service.
type Server struct {
	addr         string
	grpcServer   *grpc.Server
	healthServer *health.Server
	logger       logging.Logger
}

func NewServer(cfg config.GRPCConfig, hub *remote.Hub, logger logging.Logger) *Server {
	grpcServer := grpc.NewServer(
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             cfg.KeepaliveMinTime,
			PermitWithoutStream: true,
		}),
	)

	proto.RegisterExchangeServer(grpcServer, hub)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(remote.ServiceName, healthpb.HealthCheckResponse_SERVING)

	return &Server{
		addr:         cfg.Addr,
		grpcServer:   grpcServer,
		healthServer: healthServer,
		logger:       logger,
	}
}

func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	return s.Serve(lis)
}

func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("Starting gRPC server", "addr", lis.Addr().String())
	return s.grpcServer.Serve(lis)
}

// Stop reports the service as not serving and waits for the workers to
// hang up.
func (s *Server) Stop() {
	s.healthServer.Shutdown()
	s.grpcServer.GracefulStop()
}

// Shutdown stops the server like Stop, but drops the remaining streams
// once ctx is done.
func (s *Server) Shutdown(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("Forcing gRPC server shutdown", "error", ctx.Err())
		s.grpcServer.Stop()
		<-done
	}
}
