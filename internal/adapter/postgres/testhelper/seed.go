package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kbmproject/kbm-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedOrganization inserts an active organization.
func SeedOrganization(t *testing.T, pool *pgxpool.Pool) domain.Organization {
	t.Helper()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	addr := "Street " + suffix
	org := domain.Organization{
		ID:        uuid.New(),
		Name:      "Org " + suffix,
		Address:   &addr,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO organizations (id, name, address, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		org.ID, org.Name, org.Address, org.CreatedAt, org.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedOrganization: %v", err)
	}
	return org
}

// SeedUser inserts an active user, attached to orgID when it is not nil.
func SeedUser(t *testing.T, pool *pgxpool.Pool, orgID *uuid.UUID) domain.User {
	t.Helper()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	user := domain.User{
		ID:             uuid.New(),
		Name:           "Test User " + suffix,
		Username:       "user-" + suffix,
		Email:          "user-" + suffix + "@example.com",
		OrganizationID: orgID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO users (id, name, username, email, organization_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID, user.Name, user.Username, user.Email, user.OrganizationID, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedUser: %v", err)
	}
	return user
}

// SoftDeleteUser marks a seeded user deleted at at.
func SoftDeleteUser(t *testing.T, pool *pgxpool.Pool, id uuid.UUID, at time.Time) {
	t.Helper()

	if _, err := pool.Exec(context.Background(),
		`UPDATE users SET deleted_at = $2 WHERE id = $1`, id, at); err != nil {
		t.Fatalf("testhelper: SoftDeleteUser: %v", err)
	}
}
