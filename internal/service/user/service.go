package user

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

// userRepo defines the user repository interface needed by user service.
type userRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	ExistsByUsername(ctx context.Context, username string, exclude *uuid.UUID) (bool, error)
	ExistsByEmail(ctx context.Context, email string, exclude *uuid.UUID) (bool, error)
	Active() query.Collection[domain.User]
	ActiveInOrganization(orgID uuid.UUID) query.Collection[domain.User]
	Persist(ctx context.Context, state domain.EntityState, e domain.Entity) error
}

// orgRepo defines the organization lookups needed by user service.
type orgRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error)
}

// committer commits a unit of work together with its audit records.
type committer interface {
	CommitWithAudit(ctx context.Context, uow audit.UnitOfWork) (audit.CommitResult, error)
}

// Service implements directory user operations.
type Service struct {
	log      *slog.Logger
	users    userRepo
	orgs     orgRepo
	pipeline *query.Pipeline[domain.User]
	newUOW   audit.UnitOfWorkFactory
	sink     committer

	now   func() time.Time
	newID func() uuid.UUID
}

// NewService creates a new user service instance.
func NewService(
	logger *slog.Logger,
	users userRepo,
	orgs orgRepo,
	pipeline *query.Pipeline[domain.User],
	newUOW audit.UnitOfWorkFactory,
	sink committer,
) *Service {
	return &Service{
		log:      logger.With("service", "user"),
		users:    users,
		orgs:     orgs,
		pipeline: pipeline,
		newUOW:   newUOW,
		sink:     sink,
		now:      time.Now,
		newID:    uuid.New,
	}
}

// commit persists uow. Business data that committed without its audit
// records is reported as success; the sink has already logged what was lost.
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

// lookup loads an active user, reporting a missing one as (nil, nil).
func (s *Service) lookup(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return u, err
}
