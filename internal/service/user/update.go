package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kbmproject/kbm-backend/internal/domain"
)

// Update applies a partial update to an active user and returns the result.
func (s *Service) Update(ctx context.Context, input UpdateUserInput) (*domain.User, error) {
	// Step 1: Validate input
	if err := input.Validate(); err != nil {
		return nil, err
	}

	// Step 2: Load
	u, err := s.users.GetByID(ctx, input.ID)
	if err != nil {
		return nil, fmt.Errorf("user.Update: %w", err)
	}

	// Step 3: Uniqueness, excluding the user itself
	var username string
	if input.Username != nil {
		username = *input.Username
	}
	if err := s.checkUnique(ctx, username, input.Email, &u.ID); err != nil {
		return nil, fmt.Errorf("user.Update: %w", err)
	}

	// Step 4: Apply and commit
	uow := s.newUOW()
	uow.Track(u, s.users)

	if input.Name != nil {
		u.Name = *input.Name
	}
	if input.Username != nil {
		u.Username = *input.Username
	}
	u.Email = input.Email
	u.UpdatedAt = s.now().UTC()

	if err := s.commit(ctx, uow); err != nil {
		return nil, fmt.Errorf("user.Update: %w", err)
	}

	s.log.InfoContext(ctx, "user updated", slog.String("user_id", u.ID.String()))

	return u, nil
}
