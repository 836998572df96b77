// Package query filters, orders and pages typed collections by
// caller-supplied column names resolved against per-entity allow-lists.
package query

import (
	"errors"
	"fmt"
)

// DefaultOrderColumn is the fallback ordering column of every entity type.
const DefaultOrderColumn = "created_at"

// Column describes one allow-listed field of an entity type.
type Column[T any] struct {
	// Name is the exact, case-sensitive field name callers refer to.
	Name string
	// SQL is the column expression used by SQL-backed collections.
	SQL        string
	Orderable  bool
	Filterable bool
	// Compare orders two elements by this column. Required when Orderable.
	Compare func(a, b T) int
	// Text returns the column's text for search matching; ok is false for null.
	// Required when Filterable.
	Text func(T) (string, bool)
}

// Policy is the immutable column allow-list of one entity type.
type Policy[T any] struct {
	entity  string
	columns map[string]Column[T]
	order   []string
	key     func(T) string
	keySQL  string
}

// NewPolicy validates and builds a policy. key returns the identity key
// used to break ordering ties; keySQL is its SQL expression.
func NewPolicy[T any](entity, keySQL string, key func(T) string, columns ...Column[T]) (*Policy[T], error) {
	if entity == "" {
		return nil, errors.New("query: policy entity is required")
	}
	if key == nil {
		return nil, fmt.Errorf("query: policy %s: key func is required", entity)
	}

	p := &Policy[T]{
		entity:  entity,
		columns: make(map[string]Column[T], len(columns)),
		key:     key,
		keySQL:  keySQL,
	}
	for _, c := range columns {
		if c.Name == "" {
			return nil, fmt.Errorf("query: policy %s: column without name", entity)
		}
		if _, dup := p.columns[c.Name]; dup {
			return nil, fmt.Errorf("query: policy %s: duplicate column %q", entity, c.Name)
		}
		if c.Orderable && c.Compare == nil {
			return nil, fmt.Errorf("query: policy %s: orderable column %q has no comparator", entity, c.Name)
		}
		if c.Filterable && c.Text == nil {
			return nil, fmt.Errorf("query: policy %s: filterable column %q has no text accessor", entity, c.Name)
		}
		p.columns[c.Name] = c
		p.order = append(p.order, c.Name)
	}

	if !p.IsOrderable(DefaultOrderColumn) {
		return nil, fmt.Errorf("query: policy %s: default column %q must be orderable", entity, DefaultOrderColumn)
	}
	return p, nil
}

// MustPolicy is NewPolicy that panics on an invalid definition.
// Policies are built once at startup.
func MustPolicy[T any](entity, keySQL string, key func(T) string, columns ...Column[T]) *Policy[T] {
	p, err := NewPolicy(entity, keySQL, key, columns...)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Policy[T]) Entity() string { return p.entity }

func (p *Policy[T]) IsOrderable(column string) bool {
	if p == nil {
		return false
	}
	c, ok := p.columns[column]
	return ok && c.Orderable
}

func (p *Policy[T]) IsFilterable(column string) bool {
	if p == nil {
		return false
	}
	c, ok := p.columns[column]
	return ok && c.Filterable
}

func (p *Policy[T]) DefaultOrderColumn() string { return DefaultOrderColumn }

// Column returns the descriptor for name.
func (p *Policy[T]) Column(name string) (Column[T], bool) {
	c, ok := p.columns[name]
	return c, ok
}

// FilterableColumns returns the filterable columns in declaration order.
func (p *Policy[T]) FilterableColumns() []Column[T] {
	var out []Column[T]
	for _, name := range p.order {
		if c := p.columns[name]; c.Filterable {
			out = append(out, c)
		}
	}
	return out
}

// Key returns the identity key of v.
func (p *Policy[T]) Key(v T) string { return p.key(v) }

// KeySQL returns the SQL expression of the identity key.
func (p *Policy[T]) KeySQL() string { return p.keySQL }
