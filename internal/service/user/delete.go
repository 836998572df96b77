package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/kbmproject/kbm-backend/internal/domain"
)

// Delete soft-deletes an active user. It reports false when there is no
// such user.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if id == uuid.Nil {
		return false, domain.NewValidationError("id", "required")
	}

	u, err := s.lookup(ctx, id)
	if err != nil {
		return false, fmt.Errorf("user.Delete: %w", err)
	}
	if u == nil {
		return false, nil
	}

	uow := s.newUOW()
	uow.Track(u, s.users)
	u.SoftDelete(s.now().UTC())

	if err := s.commit(ctx, uow); err != nil {
		return false, fmt.Errorf("user.Delete: %w", err)
	}

	s.log.InfoContext(ctx, "user deleted", slog.String("user_id", id.String()))

	return true, nil
}
