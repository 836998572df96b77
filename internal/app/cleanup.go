package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kbmproject/kbm-backend/internal/config"
	"github.com/kbmproject/kbm-backend/internal/service/cleanup"
)

// RunCleanup physically removes expired soft-deleted rows once. It is meant
// to be invoked by an external scheduler.
func RunCleanup(ctx context.Context, cfg *config.Config, logger *slog.Logger) (cleanup.Result, error) {
	pool, err := openPool(ctx, cfg.Database)
	if err != nil {
		return cleanup.Result{}, fmt.Errorf("open database: %w", err)
	}
	defer pool.Close()

	res, err := NewDirectory(pool, cfg, logger, nil).Cleanup.Run(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "cleanup failed", slog.String("error", err.Error()))
		return res, err
	}
	return res, nil
}
