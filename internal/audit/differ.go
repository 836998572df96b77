// Package audit turns unit-of-work change tracking into audit records
// and persists them after the business commit.
package audit

import (
	"time"

	"github.com/kbmproject/kbm-backend/internal/domain"
)

// Differ builds change records from tracked entries.
type Differ struct {
	now func() time.Time
}

// NewDiffer creates a Differ. A nil clock uses time.Now.
func NewDiffer(clock func() time.Time) *Differ {
	if clock == nil {
		clock = time.Now
	}
	return &Differ{now: clock}
}

// Diff returns one record per added, deleted, or actually modified entry.
// Audit log entries are skipped. All records share one timestamp.
func (d *Differ) Diff(entries []domain.TrackedEntry) []domain.ChangeRecord {
	at := d.now().UTC()

	var out []domain.ChangeRecord
	for _, e := range entries {
		if e.Table == domain.TableAuditLogs {
			continue
		}
		action, ok := e.State.AuditAction()
		if !ok {
			continue
		}

		var changes domain.FieldChanges
		switch e.State {
		case domain.EntityStateAdded:
			changes = added(e.Current)
		case domain.EntityStateDeleted:
			changes = deleted(e.Original)
		case domain.EntityStateModified:
			changes = modified(e.Original, e.Current)
			if len(changes) == 0 {
				continue
			}
		}

		out = append(out, domain.ChangeRecord{
			EntityTable: e.Table,
			EntityKey:   e.Key,
			Action:      action,
			OccurredAt:  at,
			Changes:     changes,
		})
	}
	return out
}

func added(current domain.FieldSet) domain.FieldChanges {
	out := make(domain.FieldChanges, len(current))
	for name, v := range current {
		out[name] = domain.FieldChange{New: &v}
	}
	return out
}

func deleted(original domain.FieldSet) domain.FieldChanges {
	out := make(domain.FieldChanges, len(original))
	for name, v := range original {
		out[name] = domain.FieldChange{Old: &v}
	}
	return out
}

// modified keeps fields whose values differ, including fields present on one side only.
func modified(original, current domain.FieldSet) domain.FieldChanges {
	out := make(domain.FieldChanges)
	for name, before := range original {
		after, ok := current[name]
		if !ok {
			out[name] = domain.FieldChange{Old: &before}
			continue
		}
		if !before.Equal(after) {
			out[name] = domain.FieldChange{Old: &before, New: &after}
		}
	}
	for name, after := range current {
		if _, ok := original[name]; !ok {
			out[name] = domain.FieldChange{New: &after}
		}
	}
	return out
}
