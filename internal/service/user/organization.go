package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/kbmproject/kbm-backend/internal/domain"
)

// AssociateToOrganization attaches a user to an organization. It reports
// false when either is missing.
func (s *Service) AssociateToOrganization(ctx context.Context, userID, orgID uuid.UUID) (bool, error) {
	u, err := s.lookup(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("user.AssociateToOrganization: %w", err)
	}
	if u == nil {
		return false, nil
	}

	org, err := s.orgs.GetByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("user.AssociateToOrganization: %w", err)
	}

	uow := s.newUOW()
	uow.Track(u, s.users)
	u.OrganizationID = &org.ID
	u.UpdatedAt = s.now().UTC()

	if err := s.commit(ctx, uow); err != nil {
		return false, fmt.Errorf("user.AssociateToOrganization: %w", err)
	}

	s.log.InfoContext(ctx, "user associated",
		slog.String("user_id", userID.String()),
		slog.String("organization_id", orgID.String()))

	return true, nil
}

// DisassociateFromOrganization detaches a user from its organization. It
// reports false when the user is missing.
func (s *Service) DisassociateFromOrganization(ctx context.Context, userID uuid.UUID) (bool, error) {
	u, err := s.lookup(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("user.DisassociateFromOrganization: %w", err)
	}
	if u == nil {
		return false, nil
	}

	uow := s.newUOW()
	uow.Track(u, s.users)
	u.OrganizationID = nil
	u.UpdatedAt = s.now().UTC()

	if err := s.commit(ctx, uow); err != nil {
		return false, fmt.Errorf("user.DisassociateFromOrganization: %w", err)
	}

	s.log.InfoContext(ctx, "user disassociated", slog.String("user_id", userID.String()))

	return true, nil
}
