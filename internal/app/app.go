package app

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kbmproject/kbm-backend/internal/adapter/postgres"
	auditrepo "github.com/kbmproject/kbm-backend/internal/adapter/postgres/audit"
	orgrepo "github.com/kbmproject/kbm-backend/internal/adapter/postgres/organization"
	userrepo "github.com/kbmproject/kbm-backend/internal/adapter/postgres/user"
	"github.com/kbmproject/kbm-backend/internal/audit"
	"github.com/kbmproject/kbm-backend/internal/config"
	"github.com/kbmproject/kbm-backend/internal/metrics"
	"github.com/kbmproject/kbm-backend/internal/query"
	"github.com/kbmproject/kbm-backend/internal/service/cleanup"
	"github.com/kbmproject/kbm-backend/internal/service/history"
	"github.com/kbmproject/kbm-backend/internal/service/organization"
	"github.com/kbmproject/kbm-backend/internal/service/user"
)

// Directory holds the wired services of the directory domain.
type Directory struct {
	Users         *user.Service
	Organizations *organization.Service
	History       *history.Service
	Cleanup       *cleanup.Service
}

// NewDirectory wires repositories, query pipelines, and the audit sink over
// pool. m may be nil.
func NewDirectory(pool *pgxpool.Pool, cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *Directory {
	users := userrepo.New(pool)
	orgs := orgrepo.New(pool)
	auditLog := auditrepo.New(pool)

	txm := postgres.NewTxManager(pool)
	newUOW := func() audit.TrackingUnitOfWork { return postgres.NewUnitOfWork(txm) }

	sink := audit.NewSink(logger, auditLog, audit.Config{
		Enabled:      cfg.Audit.Enabled,
		WriteTimeout: cfg.Audit.WriteTimeout,
	}, audit.WithFailureHook(m.AuditWriteFailed))

	pipelineOpts := []query.Option{
		query.WithMaxPageSize(cfg.Query.MaxPageSize),
		query.WithRejectHook(m.PolicyRejected),
		query.WithRetryHook(m.QueryRetried),
	}

	return &Directory{
		Users: user.NewService(logger, users, orgs,
			query.NewPipeline(query.UserPolicy, logger, pipelineOpts...), newUOW, sink),
		Organizations: organization.NewService(logger, orgs,
			query.NewPipeline(query.OrganizationPolicy, logger, pipelineOpts...), newUOW, sink),
		History: history.NewService(logger, auditLog,
			query.NewPipeline(query.AuditPolicy, logger, pipelineOpts...)),
		Cleanup: cleanup.NewService(logger, users, orgs, auditLog, newUOW, sink, cleanup.Config{
			Retention:      cfg.Cleanup.Retention(),
			AuditRetention: cfg.Cleanup.AuditRetention(),
		}),
	}
}

// openPool validates the database settings and connects.
func openPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return postgres.NewPool(ctx, cfg)
}

// serveHTTP runs srv until ctx is done, then shuts it down within timeout.
func serveHTTP(ctx context.Context, srv *http.Server, lis net.Listener, timeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
