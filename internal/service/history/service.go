package history

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/kbmproject/kbm-backend/internal/domain"
	"github.com/kbmproject/kbm-backend/internal/query"
)

// auditRepo defines the audit log reads needed by history service.
type auditRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.AuditRecord, error)
	History(filter domain.AuditFilter) query.Collection[domain.AuditRecord]
}

// Service exposes the audit trail.
type Service struct {
	log      *slog.Logger
	audit    auditRepo
	pipeline *query.Pipeline[domain.AuditRecord]
}

// NewService creates a new history service instance.
func NewService(logger *slog.Logger, audit auditRepo, pipeline *query.Pipeline[domain.AuditRecord]) *Service {
	return &Service{
		log:      logger.With("service", "history"),
		audit:    audit,
		pipeline: pipeline,
	}
}

// Get returns one audit record.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.AuditRecord, error) {
	if id == uuid.Nil {
		return nil, domain.NewValidationError("id", "required")
	}

	rec, err := s.audit.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("history.Get: %w", err)
	}
	return rec, nil
}

// Query returns one page of audit records, optionally narrowed to one
// table and/or one entity.
func (s *Service) Query(ctx context.Context, filter domain.AuditFilter, spec domain.QuerySpec) (query.Result[domain.AuditRecord], error) {
	filter.TableName = strings.TrimSpace(filter.TableName)
	filter.EntityKey = strings.TrimSpace(filter.EntityKey)

	res, err := s.pipeline.Execute(ctx, s.audit.History(filter), spec)
	if err != nil {
		return query.Result[domain.AuditRecord]{}, fmt.Errorf("history.Query: %w", err)
	}
	return res, nil
}
