// Package health поднимает gRPC‑сервер со стандартным сервисом grpc.health.v1
// для фоновых процессов без HTTP. Статус каждой зависимости проверяется
// периодически, общий статус ("") равен SERVING, только если все проверки прошли.
package health

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/magabrotheeeer/quickmarket/internal/lib/sl"
)

// Checker проверяет одну зависимость процесса.
type Checker func(ctx context.Context) error

// Server: gRPC‑сервер проверки состояния.
type Server struct {
	grpcServer *grpc.Server
	health     *grpchealth.Server
	checks     map[string]Checker
	interval   time.Duration
	log        *slog.Logger
}

// New создаёт сервер. Ключ checks задаёт имя сервиса в запросе Check.
func New(log *slog.Logger, interval time.Duration, checks map[string]Checker) *Server {
	grpcServer := grpc.NewServer()
	hs := grpchealth.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)

	return &Server{
		grpcServer: grpcServer,
		health:     hs,
		checks:     checks,
		interval:   interval,
		log:        log.With(slog.String("component", "grpc.health")),
	}
}

// Serve обслуживает lis до отмены ctx.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	s.probe(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("health gRPC server listening on", slog.String("address", lis.Addr().String()))
		errCh <- s.grpcServer.Serve(lis)
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.health.Shutdown()
			s.grpcServer.GracefulStop()
			return nil
		case err := <-errCh:
			if errors.Is(err, grpc.ErrServerStopped) {
				return nil
			}
			return err
		case <-ticker.C:
			s.probe(ctx)
		}
	}
}

func (s *Server) probe(ctx context.Context) {
	overall := healthpb.HealthCheckResponse_SERVING
	for name, check := range s.checks {
		status := healthpb.HealthCheckResponse_SERVING
		if err := check(ctx); err != nil {
			s.log.Warn("health check failed", slog.String("service", name), sl.Err(err))
			status = healthpb.HealthCheckResponse_NOT_SERVING
			overall = status
		}
		s.health.SetServingStatus(name, status)
	}
	s.health.SetServingStatus("", overall)
}
