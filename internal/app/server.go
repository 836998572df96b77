package app

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kbmproject/kbm-backend/internal/config"
	"github.com/kbmproject/kbm-backend/internal/metrics"
	"github.com/kbmproject/kbm-backend/internal/transport/grpcapi"
	"github.com/kbmproject/kbm-backend/internal/transport/rest"
)

// RunServer serves the directory gRPC API, plus health probes and metrics
// on the ops port, until ctx is cancelled.
func RunServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.InfoContext(ctx, "starting directory service",
		slog.String("version", BuildVersion()),
		slog.String("addr", cfg.Server.Addr()),
	)

	pool, err := openPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer pool.Close()

	m, err := metrics.New()
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	if err := m.RegisterPool(pool); err != nil {
		return fmt.Errorf("register pool metrics: %w", err)
	}

	dir := NewDirectory(pool, cfg, logger, m)
	grpcServer := grpcapi.NewGRPCServer(
		grpcapi.NewServer(dir.Users, dir.Organizations, dir.History, logger),
		logger, m,
	)

	lis, err := net.Listen("tcp", cfg.Server.Addr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Server.Addr(), err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.InfoContext(gctx, "grpc server listening", slog.String("addr", lis.Addr().String()))
		return grpcServer.Serve(lis)
	})

	g.Go(func() error {
		<-gctx.Done()
		stopped := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-time.After(cfg.Server.ShutdownTimeout):
			logger.WarnContext(ctx, "graceful stop timed out, forcing")
			grpcServer.Stop()
		}
		return nil
	})

	if cfg.Server.MetricsPort != 0 {
		opsLis, err := net.Listen("tcp", cfg.Server.MetricsAddr())
		if err != nil {
			grpcServer.Stop()
			return fmt.Errorf("listen %s: %w", cfg.Server.MetricsAddr(), err)
		}
		health := rest.NewHealthHandler(BuildVersion(), rest.Check{Name: "database", Pinger: pool})
		ops := &http.Server{
			Handler:           rest.NewOpsRouter(health, m, logger),
			ReadHeaderTimeout: cfg.Gateway.ReadTimeout,
		}
		g.Go(func() error {
			logger.InfoContext(gctx, "ops server listening", slog.String("addr", opsLis.Addr().String()))
			return serveHTTP(gctx, ops, opsLis, cfg.Server.ShutdownTimeout)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	logger.InfoContext(ctx, "directory service stopped")
	return nil
}
