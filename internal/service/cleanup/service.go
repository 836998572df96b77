// Package cleanup purges soft-deleted rows once their retention has passed.
package cleanup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kbmproject/kbm-backend/internal/audit"
	"github.com/kbmproject/kbm-backend/internal/domain"
)

type userRepo interface {
	DeletedBefore(ctx context.Context, cutoff time.Time) ([]domain.User, error)
	Persist(ctx context.Context, state domain.EntityState, e domain.Entity) error
}

type orgRepo interface {
	DeletedBefore(ctx context.Context, cutoff time.Time) ([]domain.Organization, error)
	Persist(ctx context.Context, state domain.EntityState, e domain.Entity) error
}

type auditRepo interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type committer interface {
	CommitWithAudit(ctx context.Context, uow audit.UnitOfWork) (audit.CommitResult, error)
}

// Config sets how long soft-deleted rows and audit records are kept.
// A zero AuditRetention keeps audit records forever.
type Config struct {
	Retention      time.Duration
	AuditRetention time.Duration
}

// Result counts what one run removed.
type Result struct {
	Users         int
	Organizations int
	AuditRecords  int64
}

// Service physically deletes expired soft-deleted users and organizations.
// Each physical delete is recorded as a DELETED audit record.
type Service struct {
	log    *slog.Logger
	users  userRepo
	orgs   orgRepo
	audit  auditRepo
	newUOW audit.UnitOfWorkFactory
	sink   committer
	cfg    Config
	now    func() time.Time
}

// NewService creates a new cleanup service instance.
func NewService(
	logger *slog.Logger,
	users userRepo,
	orgs orgRepo,
	auditLog auditRepo,
	newUOW audit.UnitOfWorkFactory,
	sink committer,
	cfg Config,
) *Service {
	return &Service{
		log:    logger.With("service", "cleanup"),
		users:  users,
		orgs:   orgs,
		audit:  auditLog,
		newUOW: newUOW,
		sink:   sink,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Run purges users before organizations so that purged users never outlive
// their organization row.
func (s *Service) Run(ctx context.Context) (Result, error) {
	var res Result
	now := s.now().UTC()
	cutoff := now.Add(-s.cfg.Retention)

	users, err := s.users.DeletedBefore(ctx, cutoff)
	if err != nil {
		return res, fmt.Errorf("cleanup.Run: users: %w", err)
	}
	orgs, err := s.orgs.DeletedBefore(ctx, cutoff)
	if err != nil {
		return res, fmt.Errorf("cleanup.Run: organizations: %w", err)
	}

	if len(users)+len(orgs) > 0 {
		uow := s.newUOW()
		for i := range users {
			uow.Remove(&users[i], s.users)
		}
		for i := range orgs {
			uow.Remove(&orgs[i], s.orgs)
		}
		if _, err := s.sink.CommitWithAudit(ctx, uow); err != nil {
			if !errors.Is(err, audit.ErrAuditIncomplete) {
				return res, fmt.Errorf("cleanup.Run: %w", err)
			}
			s.log.WarnContext(ctx, "purged without audit",
				slog.String("unit_of_work_id", uow.ID()),
				slog.String("error", err.Error()))
		}
		res.Users = len(users)
		res.Organizations = len(orgs)
	}

	if s.cfg.AuditRetention > 0 {
		n, err := s.audit.DeleteBefore(ctx, now.Add(-s.cfg.AuditRetention))
		if err != nil {
			return res, fmt.Errorf("cleanup.Run: audit: %w", err)
		}
		res.AuditRecords = n
	}

	s.log.InfoContext(ctx, "cleanup completed",
		slog.Int("users", res.Users),
		slog.Int("organizations", res.Organizations),
		slog.Int64("audit_records", res.AuditRecords),
		slog.Time("cutoff", cutoff),
	)

	return res, nil
}
