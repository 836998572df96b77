package organization

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/kbmproject/kbm-backend/internal/domain"
	"github.com/kbmproject/kbm-backend/internal/query"
)

// Create registers a new organization and returns its id.
func (s *Service) Create(ctx context.Context, input CreateOrganizationInput) (uuid.UUID, error) {
	if err := input.Validate(); err != nil {
		return uuid.Nil, err
	}

	if err := s.checkName(ctx, input.Name, nil); err != nil {
		return uuid.Nil, fmt.Errorf("organization.Create: %w", err)
	}

	now := s.now().UTC()
	org := &domain.Organization{
		ID:        s.newID(),
		Name:      input.Name,
		Address:   input.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}

	uow := s.newUOW()
	uow.Add(org, s.orgs)
	if err := s.commit(ctx, uow); err != nil {
		return uuid.Nil, fmt.Errorf("organization.Create: %w", err)
	}

	s.log.InfoContext(ctx, "organization created",
		slog.String("organization_id", org.ID.String()),
		slog.String("name", org.Name))

	return org.ID, nil
}

// Get returns an active organization by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	if id == uuid.Nil {
		return nil, domain.NewValidationError("id", "required")
	}

	org, err := s.orgs.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("organization.Get: %w", err)
	}
	return org, nil
}

// Query returns one page of active organizations.
func (s *Service) Query(ctx context.Context, spec domain.QuerySpec) (query.Result[domain.Organization], error) {
	res, err := s.pipeline.Execute(ctx, s.orgs.Active(), spec)
	if err != nil {
		return query.Result[domain.Organization]{}, fmt.Errorf("organization.Query: %w", err)
	}
	return res, nil
}

// Update renames an active organization and optionally changes its address.
func (s *Service) Update(ctx context.Context, input UpdateOrganizationInput) (*domain.Organization, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	org, err := s.orgs.GetByID(ctx, input.ID)
	if err != nil {
		return nil, fmt.Errorf("organization.Update: %w", err)
	}

	if err := s.checkName(ctx, input.Name, &org.ID); err != nil {
		return nil, fmt.Errorf("organization.Update: %w", err)
	}

	uow := s.newUOW()
	uow.Track(org, s.orgs)

	org.Name = input.Name
	if input.Address != nil {
		org.Address = input.Address
	}
	org.UpdatedAt = s.now().UTC()

	if err := s.commit(ctx, uow); err != nil {
		return nil, fmt.Errorf("organization.Update: %w", err)
	}

	s.log.InfoContext(ctx, "organization updated", slog.String("organization_id", org.ID.String()))

	return org, nil
}

// Delete soft-deletes an active organization. It reports false when there
// is no such organization. Member users keep their association.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if id == uuid.Nil {
		return false, domain.NewValidationError("id", "required")
	}

	org, err := s.orgs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("organization.Delete: %w", err)
	}

	uow := s.newUOW()
	uow.Track(org, s.orgs)
	org.SoftDelete(s.now().UTC())

	if err := s.commit(ctx, uow); err != nil {
		return false, fmt.Errorf("organization.Delete: %w", err)
	}

	s.log.InfoContext(ctx, "organization deleted", slog.String("organization_id", id.String()))

	return true, nil
}

func (s *Service) checkName(ctx context.Context, name string, exclude *uuid.UUID) error {
	taken, err := s.orgs.NameExists(ctx, name, exclude)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("organization name %q: %w", name, domain.ErrAlreadyExists)
	}
	return nil
}
