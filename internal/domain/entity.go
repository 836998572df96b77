package domain

import "context"

// Entity is any persisted record the change tracker can diff.
type Entity interface {
	// EntityTable is the table (entity type) name.
	EntityTable() string
	// EntityKey is the identity key rendered as text; empty when unknown.
	EntityKey() string
	// AuditFields returns the entity's current field values keyed by column name.
	AuditFields() FieldSet
}

// TrackedEntry is the change tracker's view of one entity in a unit of work.
// Original is empty for added entities; Current is empty for deleted ones.
type TrackedEntry struct {
	Table    string
	Key      string
	State    EntityState
	Original FieldSet
	Current  FieldSet
}

// Persister writes one entity in the given lifecycle state.
// Repositories implement it for their own entity type.
type Persister interface {
	Persist(ctx context.Context, state EntityState, e Entity) error
}
