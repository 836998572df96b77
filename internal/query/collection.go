package query

import (
	"context"

	"github.com/kbmproject/kbm-backend/internal/domain"
)

// Collection is a lazily evaluated, typed sequence of entities.
// Filter and OrderBy return a new collection and leave the receiver unchanged;
// Count and Slice evaluate it.
type Collection[T any] interface {
	// Filter keeps elements where at least one of columns contains term
	// as a case-insensitive substring.
	Filter(term string, columns []Column[T]) Collection[T]
	// OrderBy orders by column in dir, then by the policy's identity key ascending.
	OrderBy(column Column[T], dir domain.SortDirection, policy *Policy[T]) Collection[T]
	Count(ctx context.Context) (int, error)
	Slice(ctx context.Context, offset, limit int) ([]T, error)
}
