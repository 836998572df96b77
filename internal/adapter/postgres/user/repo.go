// Package user implements the User repository using PostgreSQL.
package user

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/kbmproject/kbm-backend/internal/adapter/postgres"
	"github.com/kbmproject/kbm-backend/internal/domain"
	"github.com/kbmproject/kbm-backend/internal/query"
)

var columns = []string{
	"id", "name", "username", "email", "organization_id",
	"created_at", "updated_at", "deleted_at",
}

var active = sq.Eq{"deleted_at": nil}

// Repo provides user persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new user repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns an active user by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	sql, args, err := postgres.Builder.Select(columns...).From(domain.TableUsers).
		Where(postgres.UUIDEq("id", id)).Where(active).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get user: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, domain.TableUsers, id.String())
	}
	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		return nil, postgres.MapError(err, domain.TableUsers, id.String())
	}
	return &u, nil
}

// ExistsByUsername reports whether an active user other than exclude has username.
func (r *Repo) ExistsByUsername(ctx context.Context, username string, exclude *uuid.UUID) (bool, error) {
	return r.exists(ctx, sq.Eq{"username": username}, exclude)
}

// ExistsByEmail reports whether an active user other than exclude has email.
func (r *Repo) ExistsByEmail(ctx context.Context, email string, exclude *uuid.UUID) (bool, error) {
	return r.exists(ctx, sq.Eq{"email": email}, exclude)
}

func (r *Repo) exists(ctx context.Context, pred sq.Eq, exclude *uuid.UUID) (bool, error) {
	inner := postgres.Builder.Select("1").From(domain.TableUsers).Where(pred).Where(active)
	if exclude != nil {
		inner = inner.Where(sq.Expr("id <> ?", *exclude))
	}
	sql, args, err := postgres.Builder.Select().Column(sq.Expr("EXISTS(?)", inner)).ToSql()
	if err != nil {
		return false, fmt.Errorf("build user exists: %w", err)
	}

	var exists bool
	if err := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("user exists: %w", err)
	}
	return exists, nil
}

// Active returns all users that are not soft-deleted.
func (r *Repo) Active() query.Collection[domain.User] {
	return r.collection(active)
}

// ActiveInOrganization returns the active users attached to orgID.
func (r *Repo) ActiveInOrganization(orgID uuid.UUID) query.Collection[domain.User] {
	return r.collection(sq.And{active, postgres.UUIDEq("organization_id", orgID)})
}

// DeletedBefore returns users soft-deleted before cutoff.
func (r *Repo) DeletedBefore(ctx context.Context, cutoff time.Time) ([]domain.User, error) {
	sql, args, err := postgres.Builder.Select(columns...).From(domain.TableUsers).
		Where(sq.Lt{"deleted_at": cutoff}).OrderBy("deleted_at ASC", "id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build deleted users: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("select deleted users: %w", err)
	}
	users, err := pgx.CollectRows(rows, scanUser)
	if err != nil {
		return nil, fmt.Errorf("scan deleted users: %w", err)
	}
	return users, nil
}

func (r *Repo) collection(where sq.Sqlizer) *postgres.Collection[domain.User] {
	return postgres.NewCollection(r.pool, postgres.Source{
		Table:   domain.TableUsers,
		Columns: columns,
		Where:   where,
	}, scanUser)
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Persist writes u according to state. It satisfies domain.Persister.
// Deleted means a physical delete; soft deletes arrive as modifications.
func (r *Repo) Persist(ctx context.Context, state domain.EntityState, e domain.Entity) error {
	u, ok := e.(*domain.User)
	if !ok {
		return fmt.Errorf("user repo: unexpected entity %T", e)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	var b sq.Sqlizer
	switch state {
	case domain.EntityStateAdded:
		b = postgres.Builder.Insert(domain.TableUsers).Columns(columns...).Values(
			u.ID, u.Name, u.Username, u.Email, uuidPtrToPgUUID(u.OrganizationID),
			u.CreatedAt, u.UpdatedAt, u.DeletedAt,
		)
	case domain.EntityStateModified:
		b = postgres.Builder.Update(domain.TableUsers).SetMap(map[string]any{
			"name":            u.Name,
			"username":        u.Username,
			"email":           u.Email,
			"organization_id": uuidPtrToPgUUID(u.OrganizationID),
			"updated_at":      u.UpdatedAt,
			"deleted_at":      u.DeletedAt,
		}).Where(postgres.UUIDEq("id", u.ID))
	case domain.EntityStateDeleted:
		b = postgres.Builder.Delete(domain.TableUsers).Where(postgres.UUIDEq("id", u.ID))
	default:
		return nil
	}

	sql, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build %s user: %w", state, err)
	}
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, domain.TableUsers, u.ID.String())
	}
	if state != domain.EntityStateAdded && tag.RowsAffected() == 0 {
		return postgres.MapError(pgx.ErrNoRows, domain.TableUsers, u.ID.String())
	}
	return nil
}

// ---------------------------------------------------------------------------
// Mapping helpers
// ---------------------------------------------------------------------------

func scanUser(row pgx.CollectableRow) (domain.User, error) {
	var (
		u     domain.User
		orgID pgtype.UUID
	)
	err := row.Scan(&u.ID, &u.Name, &u.Username, &u.Email, &orgID, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt)
	if err != nil {
		return domain.User{}, err
	}
	if orgID.Valid {
		id := uuid.UUID(orgID.Bytes)
		u.OrganizationID = &id
	}
	return u, nil
}

// uuidPtrToPgUUID converts a *uuid.UUID to pgtype.UUID (nil -> NULL).
func uuidPtrToPgUUID(id *uuid.UUID) pgtype.UUID {
	if id == nil {
		return pgtype.UUID{}
	}
	return pgtype.UUID{Bytes: *id, Valid: true}
}
