// Package audit implements the audit log repository using PostgreSQL.
// Records are append-only.
package audit

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

var columns = []string{
	"id", "unit_of_work_id", "table_name", "entity_key", "action", `"timestamp"`, "changes",
}

// Repo provides audit log persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new audit repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Append stores records with a single COPY. Either all records are written or none.
func (r *Repo) Append(ctx context.Context, records []domain.AuditRecord) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([][]any, len(records))
	for i, rec := range records {
		changes, err := rec.Changes.Marshal()
		if err != nil {
			return fmt.Errorf("audit_log %s: %w", rec.ID, err)
		}
		rows[i] = []any{
			rec.ID, rec.UnitOfWorkID, rec.TableName, rec.EntityKey,
			rec.Action.String(), rec.Timestamp, changes,
		}
	}

	copyColumns := []string{"id", "unit_of_work_id", "table_name", "entity_key", "action", "timestamp", "changes"}
	n, err := postgres.QuerierFromCtx(ctx, r.pool).CopyFrom(ctx,
		pgx.Identifier{domain.TableAuditLogs}, copyColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return postgres.MapError(err, domain.TableAuditLogs, records[0].UnitOfWorkID)
	}
	if int(n) != len(records) {
		return fmt.Errorf("audit_log copy: wrote %d of %d records", n, len(records))
	}
	return nil
}

// DeleteBefore removes records older than cutoff and returns how many were deleted.
func (r *Repo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	sql, args, err := postgres.Builder.Delete(domain.TableAuditLogs).
		Where(sq.Lt{`"timestamp"`: cutoff}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete audit logs: %w", err)
	}
	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("delete audit logs: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns one audit record.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.AuditRecord, error) {
	sql, args, err := postgres.Builder.Select(columns...).From(domain.TableAuditLogs).
		Where(postgres.UUIDEq("id", id)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get audit log: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, domain.TableAuditLogs, id.String())
	}
	rec, err := pgx.CollectExactlyOneRow(rows, scanRecord)
	if err != nil {
		return nil, postgres.MapError(err, domain.TableAuditLogs, id.String())
	}
	return &rec, nil
}

// History returns the audit records matching filter. Empty filter fields match everything.
func (r *Repo) History(filter domain.AuditFilter) query.Collection[domain.AuditRecord] {
	where := sq.And{}
	if filter.TableName != "" {
		where = append(where, sq.Eq{"table_name": filter.TableName})
	}
	if filter.EntityKey != "" {
		where = append(where, sq.Eq{"entity_key": filter.EntityKey})
	}

	src := postgres.Source{Table: domain.TableAuditLogs, Columns: columns}
	if len(where) > 0 {
		src.Where = where
	}
	return postgres.NewCollection(r.pool, src, scanRecord)
}

// ---------------------------------------------------------------------------
// Mapping helpers
// ---------------------------------------------------------------------------

func scanRecord(row pgx.CollectableRow) (domain.AuditRecord, error) {
	var (
		rec     domain.AuditRecord
		action  string
		changes []byte
	)
	if err := row.Scan(&rec.ID, &rec.UnitOfWorkID, &rec.TableName, &rec.EntityKey, &action, &rec.Timestamp, &changes); err != nil {
		return domain.AuditRecord{}, err
	}
	rec.Action = domain.AuditAction(action)

	fc, err := domain.UnmarshalFieldChanges(changes)
	if err != nil {
		return domain.AuditRecord{}, fmt.Errorf("audit_log %s: %w", rec.ID, err)
	}
	rec.Changes = fc
	return rec, nil
}
