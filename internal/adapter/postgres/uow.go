package postgres

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/kbmproject/kbm-backend/internal/domain"
)

// txRunner is satisfied by *TxManager.
type txRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// UnitOfWork tracks entity mutations and commits them in one transaction.
// Entities registered with Track are snapshotted; their state is derived on
// demand by comparing the snapshot with the entity's current fields.
type UnitOfWork struct {
	id string
	tx txRunner

	mu      sync.Mutex
	entries []*entry
}

type entry struct {
	entity    domain.Entity
	persister domain.Persister
	state     domain.EntityState
	original  domain.FieldSet
}

// NewUnitOfWork starts an empty unit of work.
func NewUnitOfWork(tx txRunner) *UnitOfWork {
	return &UnitOfWork{id: uuid.NewString(), tx: tx}
}

// ID identifies the unit of work in audit records and logs.
func (u *UnitOfWork) ID() string { return u.id }

// Add registers a new entity to be inserted.
func (u *UnitOfWork) Add(e domain.Entity, p domain.Persister) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.entries = append(u.entries, &entry{entity: e, persister: p, state: domain.EntityStateAdded})
}

// Track snapshots a loaded entity. Mutations made to it afterwards are
// persisted on Commit as an update.
func (u *UnitOfWork) Track(e domain.Entity, p domain.Persister) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.find(e) != nil {
		return
	}
	u.entries = append(u.entries, &entry{
		entity:    e,
		persister: p,
		state:     domain.EntityStateUnchanged,
		original:  e.AuditFields(),
	})
}

// Remove registers an entity to be physically deleted. Removing an entity
// added in this unit of work cancels the insert.
func (u *UnitOfWork) Remove(e domain.Entity, p domain.Persister) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if existing := u.find(e); existing != nil {
		if existing.state == domain.EntityStateAdded {
			u.drop(existing)
			return
		}
		existing.state = domain.EntityStateDeleted
		return
	}
	u.entries = append(u.entries, &entry{
		entity:    e,
		persister: p,
		state:     domain.EntityStateDeleted,
		original:  e.AuditFields(),
	})
}

// Entries reports every tracked entity with its current state and field values.
func (u *UnitOfWork) Entries() []domain.TrackedEntry {
	u.mu.Lock()
	defer u.mu.Unlock()

	out := make([]domain.TrackedEntry, 0, len(u.entries))
	for _, e := range u.entries {
		te := domain.TrackedEntry{
			Table: e.entity.EntityTable(),
			Key:   e.entity.EntityKey(),
			State: e.currentState(),
		}
		switch te.State {
		case domain.EntityStateAdded:
			te.Current = e.entity.AuditFields()
		case domain.EntityStateDeleted:
			te.Original = e.original
		default:
			te.Original = e.original
			te.Current = e.entity.AuditFields()
		}
		out = append(out, te)
	}
	return out
}

// Commit persists every pending change in one transaction. On success the
// changes are accepted: tracked entities become unchanged and deleted ones
// are forgotten.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	var pending []*entry
	for _, e := range u.entries {
		if e.currentState() != domain.EntityStateUnchanged {
			pending = append(pending, e)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	err := u.tx.RunInTx(ctx, func(ctx context.Context) error {
		for _, e := range pending {
			if e.persister == nil {
				return fmt.Errorf("no persister for %s", e.entity.EntityTable())
			}
			if err := e.persister.Persist(ctx, e.currentState(), e.entity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("unit of work %s: %w", u.id, err)
	}

	u.accept()
	return nil
}

func (u *UnitOfWork) accept() {
	kept := u.entries[:0]
	for _, e := range u.entries {
		if e.state == domain.EntityStateDeleted {
			continue
		}
		e.state = domain.EntityStateUnchanged
		e.original = e.entity.AuditFields()
		kept = append(kept, e)
	}
	u.entries = kept
}

func (u *UnitOfWork) find(e domain.Entity) *entry {
	for _, existing := range u.entries {
		if existing.entity == e {
			return existing
		}
	}
	return nil
}

func (u *UnitOfWork) drop(target *entry) {
	for i, e := range u.entries {
		if e == target {
			u.entries = append(u.entries[:i], u.entries[i+1:]...)
			return
		}
	}
}

// currentState promotes a tracked entity to modified once its fields differ
// from the snapshot.
func (e *entry) currentState() domain.EntityState {
	if e.state != domain.EntityStateUnchanged {
		return e.state
	}
	current := e.entity.AuditFields()
	if len(current) != len(e.original) {
		return domain.EntityStateModified
	}
	for name, v := range current {
		if before, ok := e.original[name]; !ok || !before.Equal(v) {
			return domain.EntityStateModified
		}
	}
	return domain.EntityStateUnchanged
}
