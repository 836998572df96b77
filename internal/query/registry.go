package query

import (
	"fmt"
	"maps"
	"slices"
)

// EntityPolicy is the type-erased view of a Policy.
type EntityPolicy interface {
	Entity() string
	IsOrderable(column string) bool
	IsFilterable(column string) bool
	DefaultOrderColumn() string
}

// Registry maps entity type names to their policies. It is read-only
// after construction and safe for concurrent use.
type Registry struct {
	policies map[string]EntityPolicy
}

// NewRegistry builds a registry. Each argument must be a *Policy[T].
func NewRegistry(policies ...EntityPolicy) (*Registry, error) {
	r := &Registry{policies: make(map[string]EntityPolicy, len(policies))}
	for _, p := range policies {
		if _, dup := r.policies[p.Entity()]; dup {
			return nil, fmt.Errorf("query: duplicate policy for %s", p.Entity())
		}
		r.policies[p.Entity()] = p
	}
	return r, nil
}

// IsOrderable reports whether column may be ordered on for entity.
// Unknown entities and columns are never orderable.
func (r *Registry) IsOrderable(entity, column string) bool {
	p, ok := r.lookup(entity)
	return ok && p.IsOrderable(column)
}

// IsFilterable reports whether column participates in search for entity.
func (r *Registry) IsFilterable(entity, column string) bool {
	p, ok := r.lookup(entity)
	return ok && p.IsFilterable(column)
}

// DefaultOrderColumn returns the fallback column, or "" for an unknown entity.
func (r *Registry) DefaultOrderColumn(entity string) string {
	p, ok := r.lookup(entity)
	if !ok {
		return ""
	}
	return p.DefaultOrderColumn()
}

// Entities returns the registered entity names, sorted.
func (r *Registry) Entities() []string {
	if r == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(r.policies))
}

func (r *Registry) lookup(entity string) (EntityPolicy, bool) {
	if r == nil {
		return nil, false
	}
	p, ok := r.policies[entity]
	return p, ok
}

// PolicyFor returns the typed policy registered for entity.
func PolicyFor[T any](r *Registry, entity string) (*Policy[T], error) {
	p, ok := r.lookup(entity)
	if !ok {
		return nil, fmt.Errorf("query: no policy for %s", entity)
	}
	typed, ok := p.(*Policy[T])
	if !ok {
		return nil, fmt.Errorf("query: policy for %s has element type %T", entity, p)
	}
	return typed, nil
}
