package app

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/kbmproject/kbm-backend/internal/config"
	"github.com/kbmproject/kbm-backend/internal/metrics"
	"github.com/kbmproject/kbm-backend/internal/rpc"
	"github.com/kbmproject/kbm-backend/internal/transport/middleware"
	"github.com/kbmproject/kbm-backend/internal/transport/rest"
)

// rateLimitCleanup is how often idle per-client limiters are evicted.
const rateLimitCleanup = 5 * time.Minute

// RunGateway serves the public HTTP API, forwarding to the directory
// service, until ctx is cancelled.
func RunGateway(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.InfoContext(ctx, "starting gateway",
		slog.String("version", BuildVersion()),
		slog.String("addr", cfg.Gateway.Addr()),
		slog.String("upstream", cfg.Gateway.Upstream),
	)

	client, err := rpc.NewClient(cfg.Gateway.Upstream, cfg.Gateway.UpstreamTimeout)
	if err != nil {
		return err
	}
	defer client.Close()

	m, err := metrics.New()
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, rateLimitCleanup, m.RateLimited)
		defer limiter.Stop()
	}

	handler := rest.NewRouter(rest.RouterDeps{
		Gateway:     rest.NewGateway(client, logger),
		Health:      rest.NewHealthHandler(BuildVersion(), rest.Check{Name: "directory", Pinger: client}),
		Metrics:     m,
		RateLimiter: limiter,
		CORS:        cfg.CORS,
		Logger:      logger,
	})

	srv := &http.Server{
		Handler:      handler,
		ReadTimeout:  cfg.Gateway.ReadTimeout,
		WriteTimeout: cfg.Gateway.WriteTimeout,
		IdleTimeout:  cfg.Gateway.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	lis, err := net.Listen("tcp", cfg.Gateway.Addr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Gateway.Addr(), err)
	}
	logger.InfoContext(ctx, "gateway listening", slog.String("addr", lis.Addr().String()))

	if err := serveHTTP(ctx, srv, lis, cfg.Gateway.ShutdownTimeout); err != nil {
		return err
	}
	logger.InfoContext(ctx, "gateway stopped")
	return nil
}
