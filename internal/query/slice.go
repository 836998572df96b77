package query

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/kbmproject/kbm-backend/internal/domain"
)

// ctxCheckEvery is how many elements are scanned between cancellation checks.
const ctxCheckEvery = 256

// SliceCollection is an in-memory Collection over a slice.
type SliceCollection[T any] struct {
	items   []T
	term    string
	columns []Column[T]
	order   *sliceOrder[T]
}

type sliceOrder[T any] struct {
	column Column[T]
	dir    domain.SortDirection
	key    func(T) string
}

// NewSliceCollection wraps items. The slice is never modified.
func NewSliceCollection[T any](items []T) *SliceCollection[T] {
	return &SliceCollection[T]{items: items}
}

func (c *SliceCollection[T]) Filter(term string, columns []Column[T]) Collection[T] {
	next := *c
	next.term = strings.ToLower(term)
	next.columns = columns
	return &next
}

func (c *SliceCollection[T]) OrderBy(column Column[T], dir domain.SortDirection, policy *Policy[T]) Collection[T] {
	next := *c
	next.order = &sliceOrder[T]{column: column, dir: dir, key: policy.Key}
	return &next
}

func (c *SliceCollection[T]) Count(ctx context.Context) (int, error) {
	items, err := c.filtered(ctx)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

func (c *SliceCollection[T]) Slice(ctx context.Context, offset, limit int) ([]T, error) {
	items, err := c.filtered(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.sort(items); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) || limit <= 0 {
		return []T{}, nil
	}
	end := min(offset+limit, len(items))
	return slices.Clone(items[offset:end]), nil
}

func (c *SliceCollection[T]) filtered(ctx context.Context) ([]T, error) {
	out := make([]T, 0, len(c.items))
	for i, item := range c.items {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if c.matches(item) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (c *SliceCollection[T]) matches(item T) bool {
	if c.term == "" {
		return true
	}
	for _, col := range c.columns {
		if col.Text == nil {
			continue
		}
		if text, ok := col.Text(item); ok && strings.Contains(strings.ToLower(text), c.term) {
			return true
		}
	}
	return false
}

// sort orders items in place. A panicking comparator is reported as an error.
func (c *SliceCollection[T]) sort(items []T) (err error) {
	if c.order == nil {
		return nil
	}
	o := c.order
	if o.column.Compare == nil {
		return fmt.Errorf("column %q is not comparable", o.column.Name)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("ordering by %q: %v", o.column.Name, r)
		}
	}()

	slices.SortStableFunc(items, func(a, b T) int {
		n := o.column.Compare(a, b)
		if o.dir == domain.SortDesc {
			n = -n
		}
		if n != 0 {
			return n
		}
		return strings.Compare(o.key(a), o.key(b))
	})
	return nil
}
