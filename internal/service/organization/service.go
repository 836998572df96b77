package organization

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kbmproject/kbm-backend/internal/audit"
	"github.com/kbmproject/kbm-backend/internal/domain"
	"github.com/kbmproject/kbm-backend/internal/query"
)

// orgRepo defines the organization repository interface needed by organization service.
type orgRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error)
	NameExists(ctx context.Context, name string, exclude *uuid.UUID) (bool, error)
	Active() query.Collection[domain.Organization]
	Persist(ctx context.Context, state domain.EntityState, e domain.Entity) error
}

// committer commits a unit of work together with its audit records.
type committer interface {
	CommitWithAudit(ctx context.Context, uow audit.UnitOfWork) (audit.CommitResult, error)
}

// Service implements organization operations.
type Service struct {
	log      *slog.Logger
	orgs     orgRepo
	pipeline *query.Pipeline[domain.Organization]
	newUOW   audit.UnitOfWorkFactory
	sink     committer

	now   func() time.Time
	newID func() uuid.UUID
}

// NewService creates a new organization service instance.
func NewService(
	logger *slog.Logger,
	orgs orgRepo,
	pipeline *query.Pipeline[domain.Organization],
	newUOW audit.UnitOfWorkFactory,
	sink committer,
) *Service {
	return &Service{
		log:      logger.With("service", "organization"),
		orgs:     orgs,
		pipeline: pipeline,
		newUOW:   newUOW,
		sink:     sink,
		now:      time.Now,
		newID:    uuid.New,
	}
}

func (s *Service) commit(ctx context.Context, uow audit.UnitOfWork) error {
	_, err := s.sink.CommitWithAudit(ctx, uow)
	if err == nil {
		return nil
	}
	if errors.Is(err, audit.ErrAuditIncomplete) {
		s.log.WarnContext(ctx, "committed without audit",
			slog.String("unit_of_work_id", uow.ID()),
			slog.String("error", err.Error()))
		return nil
	}
	return err
}
