package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/kbmproject/kbm-backend/internal/domain"
)

// Create registers a new user and returns its id.
// Username and email must be unique among active users.
func (s *Service) Create(ctx context.Context, input CreateUserInput) (uuid.UUID, error) {
	// Step 1: Validate input
	if err := input.Validate(); err != nil {
		return uuid.Nil, err
	}

	// Step 2: Uniqueness
	if err := s.checkUnique(ctx, input.Username, input.Email, nil); err != nil {
		return uuid.Nil, fmt.Errorf("user.Create: %w", err)
	}

	// Step 3: Insert
	now := s.now().UTC()
	u := &domain.User{
		ID:        s.newID(),
		Name:      input.Name,
		Username:  input.Username,
		Email:     input.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	uow := s.newUOW()
	uow.Add(u, s.users)
	if err := s.commit(ctx, uow); err != nil {
		return uuid.Nil, fmt.Errorf("user.Create: %w", err)
	}

	s.log.InfoContext(ctx, "user created",
		slog.String("user_id", u.ID.String()),
		slog.String("username", u.Username))

	return u.ID, nil
}

// checkUnique rejects a username or email already held by another active user.
// Empty values are not checked.
func (s *Service) checkUnique(ctx context.Context, username, email string, exclude *uuid.UUID) error {
	if username != "" {
		taken, err := s.users.ExistsByUsername(ctx, username, exclude)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("username %q: %w", username, domain.ErrAlreadyExists)
		}
	}

	if email != "" {
		taken, err := s.users.ExistsByEmail(ctx, email, exclude)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("email %q: %w", email, domain.ErrAlreadyExists)
		}
	}

	return nil
}
