package user

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/kbmproject/kbm-backend/internal/domain"
	"github.com/kbmproject/kbm-backend/internal/query"
)

// Get returns an active user by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if id == uuid.Nil {
		return nil, domain.NewValidationError("id", "required")
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("user.Get: %w", err)
	}
	return u, nil
}

// Query returns one page of active users.
func (s *Service) Query(ctx context.Context, spec domain.QuerySpec) (query.Result[domain.User], error) {
	res, err := s.pipeline.Execute(ctx, s.users.Active(), spec)
	if err != nil {
		return query.Result[domain.User]{}, fmt.Errorf("user.Query: %w", err)
	}
	return res, nil
}

// QueryForOrganization returns one page of the active users attached to orgID.
// An unknown organization yields an empty page.
func (s *Service) QueryForOrganization(ctx context.Context, orgID uuid.UUID, spec domain.QuerySpec) (query.Result[domain.User], error) {
	res, err := s.pipeline.Execute(ctx, s.users.ActiveInOrganization(orgID), spec)
	if err != nil {
		return query.Result[domain.User]{}, fmt.Errorf("user.QueryForOrganization: %w", err)
	}
	return res, nil
}
