// Package organization implements the Organization repository using PostgreSQL.
package organization

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/kbmproject/kbm-backend/internal/adapter/postgres"
	"github.com/kbmproject/kbm-backend/internal/domain"
	"github.com/kbmproject/kbm-backend/internal/query"
)

var columns = []string{"id", "name", "address", "created_at", "updated_at", "deleted_at"}

var active = sq.Eq{"deleted_at": nil}

// Repo provides organization persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new organization repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns an active organization by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	sql, args, err := postgres.Builder.Select(columns...).From(domain.TableOrganizations).
		Where(postgres.UUIDEq("id", id)).Where(active).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get organization: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, domain.TableOrganizations, id.String())
	}
	o, err := pgx.CollectExactlyOneRow(rows, scanOrganization)
	if err != nil {
		return nil, postgres.MapError(err, domain.TableOrganizations, id.String())
	}
	return &o, nil
}

// NameExists reports whether an active organization other than exclude is named name.
func (r *Repo) NameExists(ctx context.Context, name string, exclude *uuid.UUID) (bool, error) {
	inner := postgres.Builder.Select("1").From(domain.TableOrganizations).
		Where(sq.Eq{"name": name}).Where(active)
	if exclude != nil {
		inner = inner.Where(sq.Expr("id <> ?", *exclude))
	}
	sql, args, err := postgres.Builder.Select().Column(sq.Expr("EXISTS(?)", inner)).ToSql()
	if err != nil {
		return false, fmt.Errorf("build organization exists: %w", err)
	}

	var exists bool
	if err := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("organization exists: %w", err)
	}
	return exists, nil
}

// Active returns all organizations that are not soft-deleted.
func (r *Repo) Active() query.Collection[domain.Organization] {
	return postgres.NewCollection(r.pool, postgres.Source{
		Table:   domain.TableOrganizations,
		Columns: columns,
		Where:   active,
	}, scanOrganization)
}

// DeletedBefore returns organizations soft-deleted before cutoff.
func (r *Repo) DeletedBefore(ctx context.Context, cutoff time.Time) ([]domain.Organization, error) {
	sql, args, err := postgres.Builder.Select(columns...).From(domain.TableOrganizations).
		Where(sq.Lt{"deleted_at": cutoff}).OrderBy("deleted_at ASC", "id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build deleted organizations: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("select deleted organizations: %w", err)
	}
	orgs, err := pgx.CollectRows(rows, scanOrganization)
	if err != nil {
		return nil, fmt.Errorf("scan deleted organizations: %w", err)
	}
	return orgs, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Persist writes o according to state. It satisfies domain.Persister.
func (r *Repo) Persist(ctx context.Context, state domain.EntityState, e domain.Entity) error {
	o, ok := e.(*domain.Organization)
	if !ok {
		return fmt.Errorf("organization repo: unexpected entity %T", e)
	}

	var b sq.Sqlizer
	switch state {
	case domain.EntityStateAdded:
		b = postgres.Builder.Insert(domain.TableOrganizations).Columns(columns...).
			Values(o.ID, o.Name, o.Address, o.CreatedAt, o.UpdatedAt, o.DeletedAt)
	case domain.EntityStateModified:
		b = postgres.Builder.Update(domain.TableOrganizations).SetMap(map[string]any{
			"name":       o.Name,
			"address":    o.Address,
			"updated_at": o.UpdatedAt,
			"deleted_at": o.DeletedAt,
		}).Where(postgres.UUIDEq("id", o.ID))
	case domain.EntityStateDeleted:
		b = postgres.Builder.Delete(domain.TableOrganizations).Where(postgres.UUIDEq("id", o.ID))
	default:
		return nil
	}

	sql, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build %s organization: %w", state, err)
	}
	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, domain.TableOrganizations, o.ID.String())
	}
	if state != domain.EntityStateAdded && tag.RowsAffected() == 0 {
		return postgres.MapError(pgx.ErrNoRows, domain.TableOrganizations, o.ID.String())
	}
	return nil
}

// ---------------------------------------------------------------------------
// Mapping helpers
// ---------------------------------------------------------------------------

func scanOrganization(row pgx.CollectableRow) (domain.Organization, error) {
	var o domain.Organization
	err := row.Scan(&o.ID, &o.Name, &o.Address, &o.CreatedAt, &o.UpdatedAt, &o.DeletedAt)
	return o, err
}
