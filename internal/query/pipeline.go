package query

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/kbmproject/kbm-backend/internal/domain"
)

// Result is one page of a query.
type Result[T any] struct {
	Items []T
	// Total counts matches after filtering, before paging.
	Total       int
	OrderColumn string
	Direction   domain.SortDirection
	// Rejected is set when the requested order column was missing or not
	// allowed and OrderColumn is the default.
	Rejected       bool
	RejectedColumn string
}

// Option configures a Pipeline.
type Option func(*options)

type options struct {
	maxPageSize int
	onReject    func(entity, column string)
	onRetry     func(entity, column string)
}

// WithMaxPageSize bounds QuerySpec.PageSize. Zero means unbounded.
func WithMaxPageSize(n int) Option {
	return func(o *options) { o.maxPageSize = n }
}

// WithRejectHook is called for every rejected order column.
func WithRejectHook(fn func(entity, column string)) Option {
	return func(o *options) { o.onReject = fn }
}

// WithRetryHook is called when a page is retried with the default column.
func WithRetryHook(fn func(entity, column string)) Option {
	return func(o *options) { o.onRetry = fn }
}

// Pipeline narrows, orders and pages collections of one entity type.
// It holds no per-request state and is safe for concurrent use.
type Pipeline[T any] struct {
	policy *Policy[T]
	log    *slog.Logger
	opts   options
}

// NewPipeline creates a pipeline for policy.
func NewPipeline[T any](policy *Policy[T], logger *slog.Logger, opts ...Option) *Pipeline[T] {
	p := &Pipeline[T]{
		policy: policy,
		log:    logger.With("component", "query", "entity", policy.Entity()),
	}
	for _, opt := range opts {
		opt(&p.opts)
	}
	return p
}

// Policy returns the pipeline's column policy.
func (p *Pipeline[T]) Policy() *Policy[T] { return p.policy }

// Filter narrows c to elements matching search on any filterable column.
// A blank search leaves c unchanged; a nil collection stays nil.
func (p *Pipeline[T]) Filter(c Collection[T], search string) Collection[T] {
	if c == nil || strings.TrimSpace(search) == "" {
		return c
	}
	return c.Filter(search, p.policy.FilterableColumns())
}

// Order orders c by column, falling back to the default column when
// column is not orderable. It never fails.
func (p *Pipeline[T]) Order(ctx context.Context, c Collection[T], column, direction string) Collection[T] {
	if c == nil {
		return nil
	}
	resolved, _ := p.resolve(ctx, column)
	return p.orderBy(c, resolved, domain.ParseSortDirection(direction))
}

// Page materializes one page of an ordered collection. Pages past the end,
// including pages whose offset overflows an int, are empty.
func (p *Pipeline[T]) Page(ctx context.Context, c Collection[T], page, pageSize int) ([]T, error) {
	if c == nil || page < 1 || pageSize < 1 {
		return []T{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	offset, ok := domain.PageOffset(page, pageSize)
	if !ok {
		return []T{}, nil
	}
	items, err := c.Slice(ctx, offset, pageSize)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Execute validates spec and runs filter, count, order and page over c.
// A page that fails to materialize is retried once ordered by the default
// column; a second failure is returned as *ExecutionError.
func (p *Pipeline[T]) Execute(ctx context.Context, c Collection[T], spec domain.QuerySpec) (Result[T], error) {
	if err := spec.Validate(p.opts.maxPageSize); err != nil {
		return Result[T]{}, err
	}

	column, rejected := p.resolve(ctx, spec.OrderBy)
	res := Result[T]{
		Items:       []T{},
		OrderColumn: column,
		Direction:   spec.SortDirection(),
		Rejected:    rejected,
	}
	if rejected {
		res.RejectedColumn = spec.OrderBy
	}
	if c == nil {
		return res, nil
	}

	filtered := p.Filter(c, spec.Search)

	total, err := filtered.Count(ctx)
	if err != nil {
		return Result[T]{}, p.executionError(column, err)
	}
	res.Total = total

	items, err := p.Page(ctx, p.orderBy(filtered, column, res.Direction), spec.Page, spec.PageSize)
	if err != nil && !isCancellation(err) {
		fallback := p.policy.DefaultOrderColumn()
		p.log.WarnContext(ctx, "page failed, retrying with default order",
			slog.String("column", column),
			slog.String("error", err.Error()),
		)
		if p.opts.onRetry != nil {
			p.opts.onRetry(p.policy.Entity(), column)
		}
		res.OrderColumn = fallback
		items, err = p.Page(ctx, p.orderBy(filtered, fallback, res.Direction), spec.Page, spec.PageSize)
	}
	if err != nil {
		return Result[T]{}, p.executionError(column, err)
	}

	res.Items = items
	return res, nil
}

// resolve returns the column to order by and whether the requested one was rejected.
func (p *Pipeline[T]) resolve(ctx context.Context, column string) (string, bool) {
	if p.policy.IsOrderable(column) {
		return column, false
	}
	fallback := p.policy.DefaultOrderColumn()

	p.log.WarnContext(ctx, "order column rejected",
		slog.String("column", column),
		slog.String("fallback", fallback),
	)
	if p.opts.onReject != nil {
		p.opts.onReject(p.policy.Entity(), column)
	}
	return fallback, true
}

func (p *Pipeline[T]) orderBy(c Collection[T], column string, dir domain.SortDirection) Collection[T] {
	col, _ := p.policy.Column(column)
	return c.OrderBy(col, dir, p.policy)
}

func (p *Pipeline[T]) executionError(column string, err error) error {
	if isCancellation(err) {
		return err
	}
	return &ExecutionError{Entity: p.policy.Entity(), Column: column, Err: err}
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
