package postgres

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kbmproject/kbm-backend/internal/domain"
	"github.com/kbmproject/kbm-backend/internal/query"
)

// Builder builds statements with Postgres placeholders.
var Builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// UUIDEq matches column against id. sq.Eq would expand a uuid.UUID,
// which is an array, into an IN list.
func UUIDEq(column string, id uuid.UUID) sq.Sqlizer {
	return sq.Expr(column+" = ?", id)
}

// Source describes the rows a Collection selects from.
type Source struct {
	Table   string
	Columns []string
	// Where is the base predicate, e.g. active rows only. May be nil.
	Where sq.Sqlizer
}

// Collection is a query.Collection evaluated by Postgres. Filters become
// ILIKE predicates and orderings become ORDER BY clauses built only from
// allow-listed column expressions.
type Collection[T any] struct {
	pool    *pgxpool.Pool
	src     Source
	scan    pgx.RowToFunc[T]
	where   []sq.Sqlizer
	orderBy []string
	err     error
}

// NewCollection creates a collection over src. scan maps one selected row.
func NewCollection[T any](pool *pgxpool.Pool, src Source, scan pgx.RowToFunc[T]) *Collection[T] {
	c := &Collection[T]{pool: pool, src: src, scan: scan}
	if src.Where != nil {
		c.where = []sq.Sqlizer{src.Where}
	}
	return c
}

// Where returns a copy narrowed by pred.
func (c *Collection[T]) Where(pred sq.Sqlizer) *Collection[T] {
	next := c.clone()
	next.where = append(next.where, pred)
	return next
}

func (c *Collection[T]) Filter(term string, columns []query.Column[T]) query.Collection[T] {
	pattern := "%" + escapeLike(term) + "%"

	var or sq.Or
	for _, col := range columns {
		if col.SQL == "" {
			continue
		}
		or = append(or, sq.ILike{col.SQL: pattern})
	}

	next := c.clone()
	if len(or) == 0 {
		next.where = append(next.where, sq.Expr("FALSE"))
	} else {
		next.where = append(next.where, or)
	}
	return next
}

func (c *Collection[T]) OrderBy(column query.Column[T], dir domain.SortDirection, policy *query.Policy[T]) query.Collection[T] {
	next := c.clone()
	if column.SQL == "" {
		next.err = fmt.Errorf("column %q has no SQL expression", column.Name)
		return next
	}

	direction := "ASC"
	if dir == domain.SortDesc {
		direction = "DESC"
	}
	next.orderBy = []string{column.SQL + " " + direction}
	if key := policy.KeySQL(); key != "" && key != column.SQL {
		next.orderBy = append(next.orderBy, key+" ASC")
	}
	return next
}

func (c *Collection[T]) Count(ctx context.Context) (int, error) {
	sql, args, err := c.apply(Builder.Select("count(*)").From(c.src.Table)).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count %s: %w", c.src.Table, err)
	}

	var n int
	if err := QuerierFromCtx(ctx, c.pool).QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", c.src.Table, err)
	}
	return n, nil
}

func (c *Collection[T]) Slice(ctx context.Context, offset, limit int) ([]T, error) {
	if c.err != nil {
		return nil, c.err
	}
	if limit <= 0 {
		return []T{}, nil
	}
	if offset < 0 {
		offset = 0
	}

	b := c.apply(Builder.Select(c.src.Columns...).From(c.src.Table)).
		OrderBy(c.orderBy...).
		Offset(uint64(offset)).
		Limit(uint64(limit))

	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select %s: %w", c.src.Table, err)
	}

	rows, err := QuerierFromCtx(ctx, c.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", c.src.Table, err)
	}
	items, err := pgx.CollectRows(rows, c.scan)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", c.src.Table, err)
	}
	return items, nil
}

// SQL renders the page query; used in tests and debug logging.
func (c *Collection[T]) SQL(offset, limit int) (string, []any, error) {
	return c.apply(Builder.Select(c.src.Columns...).From(c.src.Table)).
		OrderBy(c.orderBy...).
		Offset(uint64(max(offset, 0))).
		Limit(uint64(max(limit, 0))).
		ToSql()
}

func (c *Collection[T]) apply(b sq.SelectBuilder) sq.SelectBuilder {
	for _, w := range c.where {
		b = b.Where(w)
	}
	return b
}

func (c *Collection[T]) clone() *Collection[T] {
	next := *c
	next.where = append([]sq.Sqlizer(nil), c.where...)
	next.orderBy = append([]string(nil), c.orderBy...)
	return &next
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike escapes LIKE wildcards so term matches literally.
func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}
